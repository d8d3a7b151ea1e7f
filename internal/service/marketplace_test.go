package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/repository/memory"
	"rentmarket-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marketplace struct {
	store    *memory.Store
	sink     *recordingSink
	products service.ProductService
	address  service.AddressService
	carts    service.CartService
	rentals  service.RentalService
	orders   service.OrderService
}

func newMarketplace() *marketplace {
	store := memory.NewStore()
	sink := &recordingSink{}
	return &marketplace{
		store:    store,
		sink:     sink,
		products: service.NewProductService(store.ProductRepository),
		address:  service.NewAddressService(store.AddressRepository),
		carts:    service.NewCartService(store.CartRepository, store.ProductRepository, 3),
		rentals:  service.NewRentalService(store.RentalRequestRepository, store.ProductRepository, store.AddressRepository, sink),
		orders:   service.NewOrderService(store.OrderRepository, store.ProductRepository, store.AddressRepository, store.CartRepository, sink, 5),
	}
}

func sampleAddress(city string) domain.AddressFields {
	return domain.AddressFields{
		FullName:     "Asha Rao",
		PhoneNumber:  "9876543210",
		AddressLine1: "12 Mill Road",
		City:         city,
		State:        "KA",
		Pincode:      "560001",
		Country:      "IN",
	}
}

func (m *marketplace) product(t *testing.T, ownerID int32, price, dailyRate int64, qty int32) *domain.Product {
	t.Helper()
	p, err := m.products.CreateProduct(context.Background(), ownerID, service.ProductInput{
		Title:            "Power Tiller",
		PriceCents:       price,
		RentalPriceCents: dailyRate,
		IsAvailable:      true,
		Quantity:         qty,
	})
	require.NoError(t, err)
	return p
}

func (m *marketplace) addressFor(t *testing.T, ownerID int32) *domain.Address {
	t.Helper()
	a, err := m.address.CreateAddress(context.Background(), ownerID, sampleAddress("Mysuru"), false)
	require.NoError(t, err)
	return a
}

func day(base time.Time, offset int) time.Time {
	return base.AddDate(0, 0, offset)
}

func futureBase() time.Time {
	return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 30)
}

func TestRentalRequest_OverlapIsClosedInterval(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	owner, renterA, renterB := int32(1), int32(2), int32(3)
	p := m.product(t, owner, 0, 10000, 1)
	addrA := m.addressFor(t, renterA)
	addrB := m.addressFor(t, renterB)
	base := futureBase()

	first, err := m.rentals.CreateRentalRequest(ctx, renterA, service.CreateRentalInput{
		ProductID: p.ID, DeliveryAddressID: addrA.ID, StartDate: day(base, 10), EndDate: day(base, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), first.RentalDays)
	assert.Equal(t, int64(50000), first.TotalAmountCents)
	assert.Equal(t, domain.RentalStatusPending, first.Status)

	t.Run("Overlapping range is rejected", func(t *testing.T) {
		_, err := m.rentals.CreateRentalRequest(ctx, renterB, service.CreateRentalInput{
			ProductID: p.ID, DeliveryAddressID: addrB.ID, StartDate: day(base, 14), EndDate: day(base, 20),
		})
		assert.ErrorIs(t, err, domain.ErrDateOverlap)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("Touching endpoint is rejected", func(t *testing.T) {
		_, err := m.rentals.CreateRentalRequest(ctx, renterB, service.CreateRentalInput{
			ProductID: p.ID, DeliveryAddressID: addrB.ID, StartDate: day(base, 15), EndDate: day(base, 18),
		})
		assert.ErrorIs(t, err, domain.ErrDateOverlap)
	})

	t.Run("Disjoint range is accepted", func(t *testing.T) {
		rr, err := m.rentals.CreateRentalRequest(ctx, renterB, service.CreateRentalInput{
			ProductID: p.ID, DeliveryAddressID: addrB.ID, StartDate: day(base, 16), EndDate: day(base, 20),
		})
		require.NoError(t, err)
		assert.Equal(t, int32(4), rr.RentalDays)
	})

	t.Run("Cancelled request frees its range", func(t *testing.T) {
		_, err := m.rentals.Cancel(ctx, first.ID, renterA)
		require.NoError(t, err)
		_, err = m.rentals.CreateRentalRequest(ctx, renterB, service.CreateRentalInput{
			ProductID: p.ID, DeliveryAddressID: addrB.ID, StartDate: day(base, 11), EndDate: day(base, 13),
		})
		assert.NoError(t, err)
	})
}

func TestRentalRequest_ConcurrentCreatesAdmitOne(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	p := m.product(t, 1, 0, 500, 1)
	base := futureBase()

	const renters = 8
	addrs := make([]int32, renters)
	for i := range addrs {
		addrs[i] = m.addressFor(t, int32(100+i)).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, renters)
	for i := 0; i < renters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.rentals.CreateRentalRequest(ctx, int32(100+i), service.CreateRentalInput{
				ProductID: p.ID, DeliveryAddressID: addrs[i], StartDate: day(base, 1), EndDate: day(base, 3),
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDateOverlap)
	}
	assert.Equal(t, 1, created)
}

func TestRentalRequest_Lifecycle(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	owner, renter := int32(1), int32(2)
	p := m.product(t, owner, 0, 1200, 1)
	addr := m.addressFor(t, renter)
	base := futureBase()

	rr, err := m.rentals.CreateRentalRequest(ctx, renter, service.CreateRentalInput{
		ProductID: p.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 1), EndDate: day(base, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.NotificationKind{domain.NotificationRentalRequest}, m.sink.Kinds())
	assert.Equal(t, owner, m.sink.Events()[0].RecipientID)

	t.Run("Requester cannot approve", func(t *testing.T) {
		_, err := m.rentals.Approve(ctx, rr.ID, renter)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("Owner cannot cancel", func(t *testing.T) {
		_, err := m.rentals.Cancel(ctx, rr.ID, owner)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("Outsider sees not found", func(t *testing.T) {
		_, err := m.rentals.GetByID(ctx, rr.ID, 99)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("Rate before returned is a conflict", func(t *testing.T) {
		_, err := m.rentals.Rate(ctx, rr.ID, renter, 5, "great")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	approved, err := m.rentals.Approve(ctx, rr.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	last := m.sink.Events()[len(m.sink.Events())-1]
	assert.Equal(t, domain.NotificationRentalApproved, last.Kind)
	assert.Equal(t, renter, last.RecipientID)

	t.Run("Price change does not touch the agreed total", func(t *testing.T) {
		_, err := m.products.UpdateProduct(ctx, owner, p.ID, service.ProductInput{
			Title: p.Title, RentalPriceCents: 9999, IsAvailable: true, Quantity: 1,
		})
		require.NoError(t, err)
		got, err := m.rentals.GetByID(ctx, rr.ID, renter)
		require.NoError(t, err)
		assert.Equal(t, int64(3600), got.TotalAmountCents)
		assert.Equal(t, int64(1200), got.DailyRateCents)
	})

	t.Run("Approve twice is a conflict", func(t *testing.T) {
		_, err := m.rentals.Approve(ctx, rr.ID, owner)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	note := "left at the gate"
	delivered, err := m.rentals.MarkDelivered(ctx, rr.ID, owner, &note)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	assert.Equal(t, note, delivered.DeliveryNotes)

	returned, err := m.rentals.MarkReturned(ctx, rr.ID, owner, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusReturned, returned.Status)
	assert.True(t, returned.IsReturned)

	t.Run("Rating out of range", func(t *testing.T) {
		_, err := m.rentals.Rate(ctx, rr.ID, renter, 6, "")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	rated, err := m.rentals.Rate(ctx, rr.ID, renter, 4, "  solid machine ")
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, int32(4), *rated.Rating)
	assert.Equal(t, "solid machine", rated.Review)
	assert.Equal(t, domain.RentalStatusReturned, rated.Status)

	stats, err := m.rentals.Stats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stats.AsOwner[domain.RentalStatusReturned])
}

func TestRentalRequest_CreateValidation(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	owner, renter := int32(1), int32(2)
	rentable := m.product(t, owner, 1000, 300, 1)
	saleOnly := m.product(t, owner, 1000, 0, 1)
	addr := m.addressFor(t, renter)
	base := futureBase()

	tests := []struct {
		name string
		by   int32
		in   service.CreateRentalInput
		kind domain.ErrorKind
	}{
		{"Unknown product", renter, service.CreateRentalInput{ProductID: 999, DeliveryAddressID: addr.ID, StartDate: day(base, 1), EndDate: day(base, 2)}, domain.KindNotFound},
		{"Own product", owner, service.CreateRentalInput{ProductID: rentable.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 1), EndDate: day(base, 2)}, domain.KindValidation},
		{"Not rentable", renter, service.CreateRentalInput{ProductID: saleOnly.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 1), EndDate: day(base, 2)}, domain.KindValidation},
		{"Foreign address", renter, service.CreateRentalInput{ProductID: rentable.ID, DeliveryAddressID: 999, StartDate: day(base, 1), EndDate: day(base, 2)}, domain.KindNotFound},
		{"Start in the past", renter, service.CreateRentalInput{ProductID: rentable.ID, DeliveryAddressID: addr.ID, StartDate: time.Now().AddDate(0, 0, -1), EndDate: day(base, 2)}, domain.KindValidation},
		{"End before start", renter, service.CreateRentalInput{ProductID: rentable.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 3), EndDate: day(base, 2)}, domain.KindValidation},
		{"End equals start", renter, service.CreateRentalInput{ProductID: rentable.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 3), EndDate: day(base, 3)}, domain.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.rentals.CreateRentalRequest(ctx, tt.by, tt.in)
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}
}

func TestRentalRequest_DeleteIfPending(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	owner, renter := int32(1), int32(2)
	p := m.product(t, owner, 0, 100, 1)
	addr := m.addressFor(t, renter)
	base := futureBase()

	rr, err := m.rentals.CreateRentalRequest(ctx, renter, service.CreateRentalInput{
		ProductID: p.ID, DeliveryAddressID: addr.ID, StartDate: day(base, 1), EndDate: day(base, 2),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindForbidden, domain.KindOf(m.rentals.DeleteIfPending(ctx, rr.ID, owner)))
	require.NoError(t, m.rentals.DeleteIfPending(ctx, rr.ID, renter))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(m.rentals.DeleteIfPending(ctx, rr.ID, renter)))
}

func TestAddress_SingleActive(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	user := int32(7)

	first, err := m.address.CreateAddress(ctx, user, sampleAddress("Pune"), false)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := m.address.CreateAddress(ctx, user, sampleAddress("Nashik"), true)
	require.NoError(t, err)
	assert.True(t, second.IsActive)

	active, err := m.address.GetActive(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	_, err = m.address.SetActive(ctx, user, first.ID)
	require.NoError(t, err)

	list, err := m.address.ListAddresses(ctx, user)
	require.NoError(t, err)
	activeCount := 0
	for _, a := range list {
		if a.IsActive {
			activeCount++
			assert.Equal(t, first.ID, a.ID)
		}
	}
	assert.Equal(t, 1, activeCount)

	t.Run("Deleting the active address promotes the newest", func(t *testing.T) {
		third, err := m.address.CreateAddress(ctx, user, sampleAddress("Satara"), false)
		require.NoError(t, err)
		require.NoError(t, m.address.DeleteAddress(ctx, user, first.ID))
		active, err := m.address.GetActive(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, third.ID, active.ID)
	})

	t.Run("Other users cannot touch it", func(t *testing.T) {
		_, err := m.address.SetActive(ctx, 8, second.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("Missing fields", func(t *testing.T) {
		fields := sampleAddress("Pune")
		fields.Pincode = " "
		_, err := m.address.CreateAddress(ctx, user, fields, false)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestCart_TotalsFollowItems(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	buyer := int32(5)
	tiller := m.product(t, 1, 2500, 400, 10)
	sprayer := m.product(t, 1, 1000, 0, 10)
	base := futureBase()
	start, end := day(base, 1), day(base, 4)

	cart, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: tiller.ID, Quantity: 2, Kind: domain.CartItemKindSale})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cart.TotalSalePriceCents)

	cart, err = m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: tiller.ID, Quantity: 1, Kind: domain.CartItemKindSale})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)

	cart, err = m.carts.AddItem(ctx, buyer, service.CartItemInput{
		ProductID: tiller.ID, Quantity: 1, Kind: domain.CartItemKindRental, RentalStart: &start, RentalEnd: &end,
	})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, int64(7500), cart.TotalSalePriceCents)
	assert.Equal(t, int64(1200), cart.TotalRentalPriceCents)
	assert.Equal(t, int32(4), cart.TotalItems)

	t.Run("Rental line without dates", func(t *testing.T) {
		_, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: tiller.ID, Quantity: 1, Kind: domain.CartItemKindRental})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("Not rentable", func(t *testing.T) {
		_, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{
			ProductID: sprayer.ID, Quantity: 1, Kind: domain.CartItemKindRental, RentalStart: &start, RentalEnd: &end,
		})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("Quantity above stock", func(t *testing.T) {
		_, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: sprayer.ID, Quantity: 11, Kind: domain.CartItemKindSale})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	saleLine := cart.Items[cart.FindItem(tiller.ID, domain.CartItemKindSale)]
	qty := int32(1)
	cart, err = m.carts.UpdateItem(ctx, buyer, saleLine.ID, service.CartItemUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), cart.TotalSalePriceCents)

	cart, err = m.carts.RemoveItem(ctx, buyer, saleLine.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.TotalSalePriceCents)
	assert.Equal(t, int64(1200), cart.TotalRentalPriceCents)

	cart, err = m.carts.ClearCart(ctx, buyer)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, int32(0), cart.TotalItems)
	assert.Equal(t, int64(0), cart.TotalRentalPriceCents)
}

func TestCart_UpdateItemSwitchesSaleToRent(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	buyer := int32(5)
	tiller := m.product(t, 1, 2500, 400, 10)
	base := futureBase()
	start, end := day(base, 1), day(base, 4)

	cart, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: tiller.ID, Quantity: 2, Kind: domain.CartItemKindSale})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	lineID := cart.Items[0].ID

	rent := domain.CartItemKindRental
	t.Run("Missing window", func(t *testing.T) {
		_, err := m.carts.UpdateItem(ctx, buyer, lineID, service.CartItemUpdate{Kind: &rent})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	cart, err = m.carts.UpdateItem(ctx, buyer, lineID, service.CartItemUpdate{Kind: &rent, RentalStart: &start, RentalEnd: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(0), cart.TotalSalePriceCents)
	assert.Equal(t, int64(2400), cart.TotalRentalPriceCents)

	cart, err = m.carts.GetCart(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	line := cart.Items[0]
	assert.Equal(t, domain.CartItemKindRental, line.Kind)
	assert.Equal(t, int64(400), line.UnitPriceCents)
	assert.Equal(t, int32(3), line.RentalDays)
	assert.Equal(t, -1, cart.FindItem(tiller.ID, domain.CartItemKindSale))

	sale := domain.CartItemKindSale
	cart, err = m.carts.UpdateItem(ctx, buyer, lineID, service.CartItemUpdate{Kind: &sale})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), cart.TotalSalePriceCents)
	assert.Equal(t, int64(0), cart.TotalRentalPriceCents)
	assert.Nil(t, cart.Items[0].RentalStart)
}

func TestCart_ConcurrentAddsKeepEveryUnit(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	p := m.product(t, 1, 100, 0, 100)
	m.carts = service.NewCartService(m.store.CartRepository, m.store.ProductRepository, 50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.carts.AddItem(ctx, 5, service.CartItemInput{ProductID: p.ID, Quantity: 1, Kind: domain.CartItemKindSale})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	cart, err := m.carts.GetCart(ctx, 5)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(10), cart.Items[0].Quantity)
	assert.Equal(t, int64(1000), cart.TotalSalePriceCents)
}

func TestOrder_FromCart(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	buyer, sellerA, sellerB := int32(5), int32(1), int32(2)
	a := m.product(t, sellerA, 1500, 200, 5)
	b := m.product(t, sellerB, 700, 0, 5)
	m.addressFor(t, buyer)
	base := futureBase()
	start, end := day(base, 1), day(base, 2)

	_, err := m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: a.ID, Quantity: 2, Kind: domain.CartItemKindSale})
	require.NoError(t, err)
	_, err = m.carts.AddItem(ctx, buyer, service.CartItemInput{ProductID: b.ID, Quantity: 1, Kind: domain.CartItemKindSale})
	require.NoError(t, err)
	_, err = m.carts.AddItem(ctx, buyer, service.CartItemInput{
		ProductID: a.ID, Quantity: 1, Kind: domain.CartItemKindRental, RentalStart: &start, RentalEnd: &end,
	})
	require.NoError(t, err)

	order, err := m.orders.CreateOrderFromCart(ctx, buyer, 0)
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-\d+-\d{3}$`, order.OrderNumber)
	assert.Equal(t, int64(3700), order.TotalPriceCents)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Mysuru", order.ShippingAddress.City)
	assert.ElementsMatch(t, []int32{sellerA, sellerB}, order.SellerIDs())

	cart, err := m.carts.GetCart(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.CartItemKindRental, cart.Items[0].Kind)
	assert.Equal(t, int64(0), cart.TotalSalePriceCents)

	var sellerNotices int
	for _, e := range m.sink.Events() {
		if e.Kind == domain.NotificationOrderUpdate {
			sellerNotices++
		}
	}
	assert.Equal(t, 2, sellerNotices)

	t.Run("Sellers and buyer see it, others do not", func(t *testing.T) {
		_, err := m.orders.GetOrder(ctx, order.ID, sellerB)
		assert.NoError(t, err)
		_, err = m.orders.GetOrder(ctx, order.ID, 42)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

		sold, err := m.orders.ListBySeller(ctx, sellerA)
		require.NoError(t, err)
		assert.Len(t, sold, 1)
		bought, err := m.orders.ListByBuyer(ctx, sellerA)
		require.NoError(t, err)
		assert.NotNil(t, bought)
		assert.Empty(t, bought)
	})

	t.Run("Status moves to completed once", func(t *testing.T) {
		done, err := m.orders.UpdateStatus(ctx, order.ID, sellerA, domain.OrderStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, done.Status)
		_, err = m.orders.UpdateStatus(ctx, order.ID, buyer, domain.OrderStatusPending)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("Empty cart", func(t *testing.T) {
		_, err := m.orders.CreateOrderFromCart(ctx, buyer, 0)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})
}

func TestOrder_UniqueNumbersUnderLoad(t *testing.T) {
	m := newMarketplace()
	ctx := context.Background()
	p := m.product(t, 1, 100, 0, 1000)
	m.addressFor(t, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	numbers := make(map[string]bool)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, err := m.orders.CreateOrder(ctx, 5, service.CreateOrderInput{Items: []service.OrderItemInput{{ProductID: p.ID, Quantity: 1}}})
			if err != nil {
				assert.Equal(t, domain.KindConflict, domain.KindOf(err))
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, numbers[order.OrderNumber], "duplicate %s", order.OrderNumber)
			numbers[order.OrderNumber] = true
		}()
	}
	wg.Wait()
	assert.NotEmpty(t, numbers)
}

func TestOrder_NoActiveAddress(t *testing.T) {
	m := newMarketplace()
	p := m.product(t, 1, 100, 0, 10)
	_, err := m.orders.CreateOrder(context.Background(), 5, service.CreateOrderInput{Items: []service.OrderItemInput{{ProductID: p.ID, Quantity: 1}}})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.False(t, errors.Is(err, domain.ErrConflict))
}
