// Package scheduler runs the periodic reminder jobs: certificates about to expire and
// solicitudes nobody has picked up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-occupational-backend/internal/domain"
	"go-occupational-backend/pkg/email"
	"go-occupational-backend/pkg/logger"
	"go-occupational-backend/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	JobCertificateExpiry = "certificate_expiry"
	JobStaleSolicitudes  = "stale_solicitudes"

	jobTimeout = 5 * time.Minute
)

type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
	IsConfigured() bool
}

type Config struct {
	CertificateExpiryCron string
	// ExpiryWindowDays is how far ahead certificates are reported
	ExpiryWindowDays   int
	StaleSolicitudCron string
	StaleAfter         time.Duration
	// OperationsEmail receives the stale solicitud digest; empty disables that job
	OperationsEmail string
}

type Deps struct {
	Certificates domain.CertificateRepository
	Companies    domain.CompanyRepository
	Users        domain.UserRepository
	Solicitudes  domain.SolicitudRepository
	Mailer       Mailer
}

type Scheduler struct {
	cron *cron.Cron
	cfg  Config
	deps Deps
	now  func() time.Time
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}

// New validates the cron specs and registers both jobs. Nothing runs until Start.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	clog := cronLogger{l: logger.Log.With("component", "scheduler")}
	s := &Scheduler{
		cron: cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}

	if cfg.ExpiryWindowDays < 1 {
		s.cfg.ExpiryWindowDays = 30
	}
	if cfg.StaleAfter <= 0 {
		s.cfg.StaleAfter = 48 * time.Hour
	}

	if _, err := s.cron.AddFunc(cfg.CertificateExpiryCron, func() { s.run(JobCertificateExpiry, s.CertificateExpiry) }); err != nil {
		return nil, fmt.Errorf("invalid certificate expiry schedule %q: %w", cfg.CertificateExpiryCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.StaleSolicitudCron, func() { s.run(JobStaleSolicitudes, s.StaleSolicitudes) }); err != nil {
		return nil, fmt.Errorf("invalid stale solicitud schedule %q: %w", cfg.StaleSolicitudCron, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	elapsed := time.Since(start)
	metrics.RecordJobRun(name, err == nil, elapsed)

	if err != nil {
		logger.Log.Error("scheduled job failed", "job", name, "duration", elapsed, "error", err)
		return
	}
	logger.Log.Info("scheduled job finished", "job", name, "duration", elapsed)
}

func (s *Scheduler) mailerReady(job string) bool {
	if s.deps.Mailer == nil || !s.deps.Mailer.IsConfigured() {
		logger.Log.Warn("smtp not configured, reminder skipped", "job", job)
		return false
	}
	return true
}

// CertificateExpiry mails each company the certificates that expire within the window.
// Recipients are the company address plus its active users. A failure for one company does not stop the rest.
func (s *Scheduler) CertificateExpiry(ctx context.Context) error {
	from := s.now()
	to := from.AddDate(0, 0, s.cfg.ExpiryWindowDays)

	certs, err := s.deps.Certificates.ListExpiring(ctx, from, to)
	if err != nil {
		return fmt.Errorf("list expiring certificates: %w", err)
	}
	if len(certs) == 0 || !s.mailerReady(JobCertificateExpiry) {
		return nil
	}

	var order []int64
	byCompany := make(map[int64][]domain.Certificate)
	for _, c := range certs {
		if _, seen := byCompany[c.CompanyID]; !seen {
			order = append(order, c.CompanyID)
		}
		byCompany[c.CompanyID] = append(byCompany[c.CompanyID], c)
	}

	var errs []error
	for _, companyID := range order {
		if err := s.notifyCompany(ctx, companyID, byCompany[companyID]); err != nil {
			errs = append(errs, fmt.Errorf("company %d: %w", companyID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) notifyCompany(ctx context.Context, companyID int64, certs []domain.Certificate) error {
	company, err := s.deps.Companies.GetByID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("load company: %w", err)
	}

	recipients := []string{}
	seen := map[string]bool{}
	add := func(addr string) {
		key := strings.ToLower(strings.TrimSpace(addr))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, strings.TrimSpace(addr))
	}
	add(company.Email)

	users, err := s.deps.Users.ListByCompany(ctx, companyID)
	if err != nil {
		logger.Log.Warn("failed to load company users for reminder", "company_id", companyID, "error", err)
	}
	for _, u := range users {
		add(u.Email)
	}
	if len(recipients) == 0 {
		logger.Log.Warn("company has no email recipients, reminder skipped", "company_id", companyID)
		return nil
	}

	items := make([]email.ExpiringItem, 0, len(certs))
	for _, c := range certs {
		items = append(items, email.ExpiringItem{
			CandidateName: c.CandidateName,
			Code:          c.Code,
			ValidUntil:    c.ValidUntil.Format("2006-01-02"),
		})
	}

	msg, err := email.CertificatesExpiring(recipients[0], email.ExpiringCertificatesData{
		CompanyName: company.DisplayName(),
		Days:        s.cfg.ExpiryWindowDays,
		Items:       items,
	})
	if err != nil {
		return err
	}
	msg.To = recipients

	err = s.deps.Mailer.Send(ctx, msg)
	metrics.RecordMail("scheduler", err)
	return err
}

// StaleSolicitudes sends operations one digest of the solicitudes untouched for longer than StaleAfter.
func (s *Scheduler) StaleSolicitudes(ctx context.Context) error {
	if s.cfg.OperationsEmail == "" {
		return nil
	}

	stale, err := s.deps.Solicitudes.ListStale(ctx, s.now().Add(-s.cfg.StaleAfter))
	if err != nil {
		return fmt.Errorf("list stale solicitudes: %w", err)
	}
	if len(stale) == 0 || !s.mailerReady(JobStaleSolicitudes) {
		return nil
	}

	items := make([]email.StaleItem, 0, len(stale))
	for _, sol := range stale {
		items = append(items, email.StaleItem{
			Title:     sol.Title,
			Company:   sol.CompanyName,
			CreatedAt: sol.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	msg, err := email.StaleSolicitudes(s.cfg.OperationsEmail, email.StaleSolicitudesData{
		Hours: int(s.cfg.StaleAfter.Hours()),
		Items: items,
	})
	if err != nil {
		return err
	}

	err = s.deps.Mailer.Send(ctx, msg)
	metrics.RecordMail("scheduler", err)
	return err
}
