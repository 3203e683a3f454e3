package background

import (
	"context"
	"log"
	"sync"
	"time"

	"fixhub/internal/jobs"
	"fixhub/internal/repositories"
	"fixhub/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the periodic maintenance work: low stock scans and
// overdue invoice sweeps.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	alertService   *jobs.InventoryAlertService
	invoiceService services.InvoiceService
	companyRepo    repositories.CompanyRepository
	registered     map[string]gocron.Job
	mu             sync.RWMutex
}

func NewJobScheduler(alertService *jobs.InventoryAlertService, invoiceService services.InvoiceService, companyRepo repositories.CompanyRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		alertService:   alertService,
		invoiceService: invoiceService,
		companyRepo:    companyRepo,
		registered:     make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	lowStockJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.alertService.ScheduledLowStockCheck, context.Background()),
		gocron.WithName("low-stock-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock job: %v", err)
	} else {
		js.registered["low-stock-check"] = lowStockJob
	}

	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.markOverdueInvoices, context.Background()),
		gocron.WithName("invoice-overdue-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue invoice job: %v", err)
	} else {
		js.registered["invoice-overdue-sweep"] = overdueJob
	}

	log.Printf("Registered %d background jobs", len(js.registered))
}

func (js *JobScheduler) markOverdueInvoices(ctx context.Context) error {
	companyIDs, err := js.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Failed to list companies for overdue sweep: %v", err)
		return err
	}

	var total int64
	for _, companyID := range companyIDs {
		count, err := js.invoiceService.MarkOverdue(ctx, companyID)
		if err != nil {
			log.Printf("Overdue sweep failed for company %s: %v", companyID.String(), err)
			continue
		}
		total += count
	}
	if total > 0 {
		log.Printf("Marked %d invoices overdue", total)
	}
	return nil
}

// JobNames reports the registered job names, mainly for diagnostics.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.registered))
	for name := range js.registered {
		names = append(names, name)
	}
	return names
}
