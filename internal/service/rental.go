package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/utils"

	"github.com/google/uuid"
)

// rentalEventCreate keys the notice sent when a request is submitted.
const rentalEventCreate domain.RentalEvent = "create"

type rentalService struct {
	rentalRepo  repository.RentalRequestRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	sink        NotificationSink
	now         func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRequestRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	sink NotificationSink,
) RentalService {
	return &rentalService{
		rentalRepo:  rentalRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		sink:        sink,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *rentalService) CreateRentalRequest(ctx context.Context, requesterID int32, in CreateRentalInput) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.CreateRentalRequest", "requesterID", requesterID, "productID", in.ProductID)

	product, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		err = lookupError(err, "product")
		logger.ExitMethodWithError("rentalService.CreateRentalRequest", err, "productID", in.ProductID)
		return nil, err
	}
	if err := checkRentableBy(product, requesterID); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRentalRequest", err, "productID", in.ProductID)
		return nil, err
	}

	if _, err := s.addressRepo.GetByOwner(ctx, requesterID, in.DeliveryAddressID); err != nil {
		err = lookupError(err, "delivery address")
		logger.ExitMethodWithError("rentalService.CreateRentalRequest", err, "addressID", in.DeliveryAddressID)
		return nil, err
	}

	start, end := in.StartDate.UTC(), in.EndDate.UTC()
	if err := s.checkWindow(start, end); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRentalRequest", err, "startDate", start, "endDate", end)
		return nil, err
	}

	days := utils.RentalDays(start, end)
	rr := &domain.RentalRequest{
		RequesterID:       requesterID,
		OwnerID:           product.OwnerID,
		ProductID:         product.ID,
		DeliveryAddressID: in.DeliveryAddressID,
		StartDate:         start,
		EndDate:           end,
		RentalDays:        days,
		DailyRateCents:    product.RentalPriceCents,
		TotalAmountCents:  utils.RentalTotal(product.RentalPriceCents, days),
		Status:            domain.RentalStatusPending,
		Message:           strings.TrimSpace(in.Message),
	}
	if err := s.rentalRepo.CreateIfAvailable(ctx, rr); err != nil {
		err = lookupError(err, "product")
		logger.ExitMethodWithError("rentalService.CreateRentalRequest", err, "productID", in.ProductID)
		return nil, err
	}

	s.notify(ctx, rr, rentalEventCreate)
	logger.ExitMethod("rentalService.CreateRentalRequest", "rentalRequestID", rr.ID, "totalAmountCents", rr.TotalAmountCents)
	return rr, nil
}

func checkRentableBy(product *domain.Product, requesterID int32) error {
	switch {
	case product.OwnerID == requesterID:
		return domain.NewValidationError("cannot rent your own product")
	case !product.Rentable():
		return domain.NewValidationError("product is not available for rent")
	case !product.Purchasable():
		return domain.NewValidationError("product is not available")
	}
	return nil
}

func (s *rentalService) checkWindow(start, end time.Time) error {
	if !start.After(s.now()) {
		return domain.NewValidationError("start date must be in the future")
	}
	if !end.After(start) {
		return domain.NewValidationError("end date must be after start date")
	}
	return nil
}

// Transition applies one event of the rental state machine. Participants
// that lack the role for the event get Forbidden; a status that does not
// accept the event gets an invalid-transition Conflict. Callers who are not
// party to the request see NotFound.
func (s *rentalService) Transition(ctx context.Context, requestID, actorID int32, event domain.RentalEvent, args TransitionArgs) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.Transition", "rentalRequestID", requestID, "actorID", actorID, "event", event)

	rr, actor, err := s.loadForActor(ctx, requestID, actorID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
		return nil, err
	}

	if event == domain.RentalEventAnnotate {
		return s.annotate(ctx, rr, actor, args)
	}

	rule, ok := domain.LookupRentalRule(event)
	if !ok {
		err := domain.NewValidationError("unknown rental event %q", event)
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
		return nil, err
	}
	if actor != rule.Actor {
		err := domain.NewForbiddenError("only the %s can %s a rental request", rule.Actor, event)
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
		return nil, err
	}
	if rr.Status != rule.From {
		err := domain.NewInvalidTransitionError(rr.Status, event)
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
		return nil, err
	}

	now := s.now()
	switch event {
	case domain.RentalEventApprove:
		rr.ApprovedAt = &now
	case domain.RentalEventReject:
		reason := strings.TrimSpace(args.RejectionReason)
		if reason == "" {
			err := domain.NewValidationError("rejection reason is required")
			logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
			return nil, err
		}
		rr.RejectionReason = reason
	case domain.RentalEventComplete:
		rr.DeliveredAt = &now
		rr.IsDelivered = true
		if args.DeliveryNotes != nil {
			rr.DeliveryNotes = *args.DeliveryNotes
		}
	case domain.RentalEventReturn:
		rr.ReturnedAt = &now
		rr.IsReturned = true
		if args.ReturnNotes != nil {
			rr.ReturnNotes = *args.ReturnNotes
		}
	case domain.RentalEventRate:
		if args.Rating < 1 || args.Rating > 5 {
			err := domain.NewValidationError("rating must be between 1 and 5")
			logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID, "rating", args.Rating)
			return nil, err
		}
		rating := args.Rating
		rr.Rating = &rating
		rr.Review = strings.TrimSpace(args.Review)
	}

	from := rr.Status
	rr.Status = rule.To
	if err := s.save(ctx, rr, from, event); err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", requestID)
		return nil, err
	}

	s.notify(ctx, rr, event)
	logger.ExitMethod("rentalService.Transition", "rentalRequestID", requestID, "from", from, "to", rr.Status)
	return rr, nil
}

func (s *rentalService) annotate(ctx context.Context, rr *domain.RentalRequest, actor domain.RentalActor, args TransitionArgs) (*domain.RentalRequest, error) {
	var err error
	switch {
	case actor != domain.RentalActorOwner:
		err = domain.NewForbiddenError("only the owner can add delivery or return notes")
	case !rr.Status.Annotatable():
		err = domain.NewInvalidTransitionError(rr.Status, domain.RentalEventAnnotate)
	case args.DeliveryNotes == nil && args.ReturnNotes == nil:
		err = domain.NewValidationError("delivery or return notes are required")
	}
	if err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", rr.ID, "event", domain.RentalEventAnnotate)
		return nil, err
	}
	if args.DeliveryNotes != nil {
		rr.DeliveryNotes = *args.DeliveryNotes
	}
	if args.ReturnNotes != nil {
		rr.ReturnNotes = *args.ReturnNotes
	}
	if err := s.save(ctx, rr, rr.Status, domain.RentalEventAnnotate); err != nil {
		logger.ExitMethodWithError("rentalService.Transition", err, "rentalRequestID", rr.ID, "event", domain.RentalEventAnnotate)
		return nil, err
	}
	logger.ExitMethod("rentalService.Transition", "rentalRequestID", rr.ID, "event", domain.RentalEventAnnotate)
	return rr, nil
}

// save writes rr if its stored status is still from. Losing the race to a
// concurrent transition is reported against the status that won.
func (s *rentalService) save(ctx context.Context, rr *domain.RentalRequest, from domain.RentalStatus, event domain.RentalEvent) error {
	err := s.rentalRepo.Update(ctx, rr, from)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStaleWrite) {
		current, getErr := s.rentalRepo.GetByID(ctx, rr.ID)
		if getErr != nil {
			return lookupError(getErr, "rental request")
		}
		return domain.NewInvalidTransitionError(current.Status, event)
	}
	return lookupError(err, "rental request")
}

// loadForActor fetches the request and the caller's role on it. Outsiders get
// NotFound so that existence is not revealed.
func (s *rentalService) loadForActor(ctx context.Context, requestID, userID int32) (*domain.RentalRequest, domain.RentalActor, error) {
	rr, err := s.rentalRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, "", lookupError(err, "rental request")
	}
	actor, ok := rr.ActorFor(userID)
	if !ok {
		return nil, "", domain.NewNotFoundError("rental request")
	}
	return rr, actor, nil
}

func (s *rentalService) Approve(ctx context.Context, requestID, ownerID int32) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, ownerID, domain.RentalEventApprove, TransitionArgs{})
}

func (s *rentalService) Reject(ctx context.Context, requestID, ownerID int32, reason string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, ownerID, domain.RentalEventReject, TransitionArgs{RejectionReason: reason})
}

func (s *rentalService) Cancel(ctx context.Context, requestID, requesterID int32) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, requesterID, domain.RentalEventCancel, TransitionArgs{})
}

func (s *rentalService) MarkDelivered(ctx context.Context, requestID, ownerID int32, notes *string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, ownerID, domain.RentalEventComplete, TransitionArgs{DeliveryNotes: notes})
}

func (s *rentalService) MarkReturned(ctx context.Context, requestID, ownerID int32, notes *string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, ownerID, domain.RentalEventReturn, TransitionArgs{ReturnNotes: notes})
}

func (s *rentalService) Rate(ctx context.Context, requestID, requesterID int32, rating int32, review string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, requesterID, domain.RentalEventRate, TransitionArgs{Rating: rating, Review: review})
}

func (s *rentalService) AddNotes(ctx context.Context, requestID, ownerID int32, deliveryNotes, returnNotes *string) (*domain.RentalRequest, error) {
	return s.Transition(ctx, requestID, ownerID, domain.RentalEventAnnotate, TransitionArgs{DeliveryNotes: deliveryNotes, ReturnNotes: returnNotes})
}

func (s *rentalService) ListByRequester(ctx context.Context, userID int32) ([]domain.RentalRequest, error) {
	out, err := s.rentalRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if out == nil {
		out = []domain.RentalRequest{}
	}
	return out, nil
}

func (s *rentalService) ListByOwner(ctx context.Context, userID int32) ([]domain.RentalRequest, error) {
	out, err := s.rentalRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if out == nil {
		out = []domain.RentalRequest{}
	}
	return out, nil
}

func (s *rentalService) GetByID(ctx context.Context, requestID, callerID int32) (*domain.RentalRequest, error) {
	rr, _, err := s.loadForActor(ctx, requestID, callerID)
	return rr, err
}

func (s *rentalService) DeleteIfPending(ctx context.Context, requestID, requesterID int32) error {
	logger.EnterMethod("rentalService.DeleteIfPending", "rentalRequestID", requestID, "requesterID", requesterID)

	err := s.deleteIfPending(ctx, requestID, requesterID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.DeleteIfPending", err, "rentalRequestID", requestID)
		return err
	}
	logger.Info("Deleted pending rental request", "rentalRequestID", requestID, "requesterID", requesterID)
	logger.ExitMethod("rentalService.DeleteIfPending", "rentalRequestID", requestID)
	return nil
}

func (s *rentalService) deleteIfPending(ctx context.Context, requestID, requesterID int32) error {
	rr, actor, err := s.loadForActor(ctx, requestID, requesterID)
	if err != nil {
		return err
	}
	if actor != domain.RentalActorRequester {
		return domain.NewForbiddenError("only the requester can delete a rental request")
	}
	if rr.Status != domain.RentalStatusPending {
		return domain.NewInvalidTransitionError(rr.Status, domain.RentalEventDelete)
	}
	if err := s.rentalRepo.DeletePending(ctx, requestID, requesterID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewConflictError("rental request is no longer pending")
		}
		return storageError(err)
	}
	return nil
}

func (s *rentalService) Stats(ctx context.Context, userID int32) (*domain.RentalStats, error) {
	asRequester, err := s.rentalRepo.CountByStatus(ctx, userID, domain.RentalActorRequester)
	if err != nil {
		return nil, storageError(err)
	}
	asOwner, err := s.rentalRepo.CountByStatus(ctx, userID, domain.RentalActorOwner)
	if err != nil {
		return nil, storageError(err)
	}
	return &domain.RentalStats{AsRequester: asRequester, AsOwner: asOwner}, nil
}

type rentalNotice struct {
	kind     domain.NotificationKind
	toOwner  bool
	priority domain.NotificationPriority
	title    string
	message  string
}

var rentalNotices = map[domain.RentalEvent]rentalNotice{
	rentalEventCreate: {domain.NotificationRentalRequest, true, domain.PriorityHigh,
		"New Rental Request", "You have received a new rental request for your product"},
	domain.RentalEventApprove: {domain.NotificationRentalApproved, false, domain.PriorityHigh,
		"Rental Request Approved", "Your rental request has been approved"},
	domain.RentalEventReject: {domain.NotificationRentalRejected, false, domain.PriorityMedium,
		"Rental Request Rejected", "Your rental request has been rejected"},
	domain.RentalEventComplete: {domain.NotificationRentalCompleted, false, domain.PriorityMedium,
		"Rental Delivered", "Your rental has been marked as delivered"},
	domain.RentalEventReturn: {domain.NotificationRentalReturned, false, domain.PriorityMedium,
		"Rental Returned", "Your rental has been marked as returned"},
	domain.RentalEventCancel: {domain.NotificationRentalCancelled, true, domain.PriorityMedium,
		"Rental Request Cancelled", "A rental request for your product was cancelled"},
}

// notify hands the event to the sink after the write has committed. Events
// without a notice (rate) emit nothing.
func (s *rentalService) notify(ctx context.Context, rr *domain.RentalRequest, event domain.RentalEvent) {
	n, ok := rentalNotices[event]
	if !ok || s.sink == nil {
		return
	}
	recipient, from := rr.RequesterID, rr.OwnerID
	if n.toOwner {
		recipient, from = rr.OwnerID, rr.RequesterID
	}
	attrs := map[string]string{
		"rental_request_id": strconv.Itoa(int(rr.ID)),
		"product_id":        strconv.Itoa(int(rr.ProductID)),
		"status":            string(rr.Status),
	}
	if rr.RejectionReason != "" && event == domain.RentalEventReject {
		attrs["rejection_reason"] = rr.RejectionReason
	}
	s.sink.Emit(ctx, domain.NotificationEvent{
		ID:          uuid.NewString(),
		Kind:        n.kind,
		RecipientID: recipient,
		FromUserID:  from,
		Priority:    n.priority,
		Title:       n.title,
		Message:     n.message,
		Attributes:  attrs,
		OccurredAt:  s.now(),
	})
}
