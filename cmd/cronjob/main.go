package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rentmarket-backend/internal/app"
	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/jobs"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/scheduler"
	"rentmarket-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-stale-pending', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rent Market cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()
	repos, db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	dispatcher, stopNotifier, err := app.NewNotifier(ctx, cfg, repos)
	if err != nil {
		logger.Error("Failed to start notifications", "error", err)
		log.Fatalf("Failed to start notifications: %v", err)
	}
	defer stopNotifier()

	maintenance := service.NewMaintenanceService(repos.Rentals, repos.Notifications, dispatcher)
	jobRunner := jobs.NewJobRunner(maintenance, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		ok := runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce, "ok", ok)
		if !ok {
			stopNotifier()
			os.Exit(1)
		}
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to register jobs: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and reports whether it succeeded
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "expire-stale-pending":
		return jobRunner.ExpireStalePendingRequests()
	case "send-start-reminders":
		return jobRunner.SendRentalStartReminders()
	case "purge-notifications":
		return jobRunner.PurgeDeletedNotifications()
	case "all":
		return jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expire-stale-pending\n")
		fmt.Printf("  - send-start-reminders\n")
		fmt.Printf("  - purge-notifications\n")
		fmt.Printf("  - all\n")
		return false
	}
}
