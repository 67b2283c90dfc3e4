// Package scheduler runs the periodic maintenance jobs: the nightly sector
// name repair and the morning unchecked-equipment summary email. Jobs take a
// distributed lock first so only one instance runs them.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/api/handlers/reports"
	"github.com/inventario-app/inventario-api/config"
	"github.com/inventario-app/inventario-api/databases"
	templates "github.com/inventario-app/inventario-api/templates/html"
)

// Scheduler handles periodic background jobs for the inventory registry
type Scheduler struct {
	cron       *cron.Cron
	EDB        databases.EquipmentDatabase
	SDB        databases.SectorDatabase
	LockDB     databases.SchedulerLockDatabase
	conf       *config.Config
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	eDB databases.EquipmentDatabase,
	sDB databases.SectorDatabase,
	lockDB databases.SchedulerLockDatabase,
	conf *config.Config,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		EDB:        eDB,
		SDB:        sDB,
		LockDB:     lockDB,
		conf:       conf,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Re-sync denormalized sector names nightly at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.repairSectorNames)
	if err != nil {
		zap.S().Errorw("failed to register sector repair job", "error", err)
	}

	// Email the unchecked-equipment summary every morning at 7 AM UTC
	_, err = s.cron.AddFunc("0 7 * * *", s.sendUncheckedSummary)
	if err != nil {
		zap.S().Errorw("failed to register unchecked summary job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Inventory scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Inventory scheduler stopped")
}

// repairSectorNames re-syncs the denormalized sectorName on every equipment
func (s *Scheduler) repairSectorNames() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "sector_repair_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for sector repair job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Sector repair job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "sector_repair_job", s.instanceID)

	zap.S().Infow("Running sector name repair job", "instance", s.instanceID)

	sectors, err := s.SDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to load sectors", "error", err)
		return
	}

	repaired, err := s.EDB.RepairSectorNames(ctx, sectors)
	if err != nil {
		zap.S().Errorw("failed to repair sector names", "error", err)
		return
	}
	zap.S().Infow("Sector name repair finished", "repaired", repaired)
}

// sendUncheckedSummary emails the daily conference progress report
func (s *Scheduler) sendUncheckedSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "unchecked_summary_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for unchecked summary job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Unchecked summary job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "unchecked_summary_job", s.instanceID)

	if s.conf.AlertEmail == "" {
		zap.S().Debug("No alert email configured, skipping unchecked summary")
		return
	}

	zap.S().Infow("Running unchecked summary job", "instance", s.instanceID)

	equipments, err := s.EDB.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to load equipments", "error", err)
		return
	}

	summary := reports.Summarize(equipments, time.Now(), time.UTC)
	unchecked := reports.Unchecked(equipments)

	body := fmt.Sprintf(
		"Conference progress as of %s\n\nTotal equipments: %d\nChecked: %d\nUnchecked: %d\nChecked today: %d\n",
		time.Now().UTC().Format("2006-01-02"),
		summary.Total, summary.TotalChecked, summary.TotalUnchecked, summary.CheckedToday,
	)
	limit := len(unchecked)
	if limit > 0 {
		body += "\nStill unchecked:\n"
		if limit > 25 {
			limit = 25
		}
		for _, eq := range unchecked[:limit] {
			body += fmt.Sprintf("- %s (%s)\n", eq.Details.Name, eq.Details.Barcode)
		}
		if len(unchecked) > limit {
			body += fmt.Sprintf("... and %d more\n", len(unchecked)-limit)
		}
	}

	if err := s.sendEmail(s.conf.AlertEmail, "Daily conference summary", body); err != nil {
		zap.S().Errorw("failed to send unchecked summary email", "error", err)
	}
}

func (s *Scheduler) sendEmail(toEmail, subject, plainText string) error {
	fromEmail := s.conf.AlertFromEmail
	if fromEmail == "" {
		fromEmail = "no-reply@inventario.app"
	}
	from := mail.NewEmail("Inventario", fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, templates.RenderGenericEmail(subject, plainText))
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid status %d", response.StatusCode)
	}
	return nil
}
