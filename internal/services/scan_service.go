package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vibecheck-lab/vibecheck/internal/models"
	"github.com/vibecheck-lab/vibecheck/internal/utils"
)

// ScanStatus values drive the progress event stream.
type ScanStatus string

const (
	StatusFetching      ScanStatus = "fetching"
	StatusFetchingDone  ScanStatus = "fetching_done"
	StatusAnalyzing     ScanStatus = "analyzing"
	StatusAnalyzingDone ScanStatus = "analyzing_done"
	StatusAttesting     ScanStatus = "attesting"
	StatusComplete      ScanStatus = "complete"
	StatusError         ScanStatus = "error"
)

// ProgressEvent is one update emitted while a scan runs.
type ProgressEvent struct {
	Status      ScanStatus              `json:"status"`
	TokenName   string                  `json:"tokenName,omitempty"`
	TokenSymbol string                  `json:"tokenSymbol,omitempty"`
	Report      *models.VibeCheckReport `json:"data,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// ProgressFunc receives progress events. May be nil.
type ProgressFunc func(event ProgressEvent)

// ScanStore persists finished scans.
type ScanStore interface {
	CreateScanRecord(record *models.ScanRecord) error
}

// ScanService drives a full scan: cache check, evidence aggregation,
// analysis, optional attestation, persistence.
type ScanService interface {
	Scan(ctx context.Context, address string, progress ProgressFunc) (*models.VibeCheckReport, error)
}

type scanService struct {
	collector   CollectorService
	analyzer    AnalyzerService
	attestation AttestationService // nil when the bridge is not configured
	cache       CacheService
	store       ScanStore // nil when persistence is disabled
	cacheTTL    time.Duration
	log         zerolog.Logger
}

func NewScanService(
	collector CollectorService,
	analyzer AnalyzerService,
	attestation AttestationService,
	cache CacheService,
	store ScanStore,
	cacheTTL time.Duration,
	log zerolog.Logger,
) ScanService {
	return &scanService{
		collector:   collector,
		analyzer:    analyzer,
		attestation: attestation,
		cache:       cache,
		store:       store,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

func (s *scanService) Scan(ctx context.Context, address string, progress ProgressFunc) (*models.VibeCheckReport, error) {
	emit := func(event ProgressEvent) {
		if progress != nil {
			progress(event)
		}
	}

	key := utils.NormalizeAddress(address)
	if cached, ok := s.cache.Get(key); ok {
		emit(ProgressEvent{Status: StatusComplete, Report: cached})
		return cached, nil
	}

	emit(ProgressEvent{Status: StatusFetching})
	input, degradations, err := s.collector.Aggregate(ctx, address)
	if err != nil {
		emit(ProgressEvent{Status: StatusError, Error: err.Error()})
		return nil, err
	}
	for _, d := range degradations {
		s.log.Debug().Str("collector", d.Collector).Str("reason", d.Reason).Msg("evidence degraded")
	}
	emit(ProgressEvent{
		Status:      StatusFetchingDone,
		TokenName:   input.Token.Name,
		TokenSymbol: input.Token.Symbol,
	})

	emit(ProgressEvent{Status: StatusAnalyzing})
	report, usedFallback := s.analyzer.Analyze(ctx, input)
	emit(ProgressEvent{Status: StatusAnalyzingDone})

	if s.attestation != nil {
		emit(ProgressEvent{Status: StatusAttesting})
		txHash, err := s.attestation.Attest(ctx, report)
		if err != nil {
			s.log.Warn().Err(err).Str("token", report.Token.Address).Msg("attestation failed (non-fatal)")
		} else {
			report.AttestationTx = txHash
		}
	}

	s.cache.Set(key, report, s.cacheTTL)
	s.persist(report, usedFallback)

	emit(ProgressEvent{Status: StatusComplete, Report: report})
	return report, nil
}

func (s *scanService) persist(report *models.VibeCheckReport, usedFallback bool) {
	if s.store == nil {
		return
	}

	record := &models.ScanRecord{
		ScanID:        uuid.New().String(),
		TokenAddress:  utils.NormalizeAddress(report.Token.Address),
		TokenName:     report.Token.Name,
		TokenSymbol:   report.Token.Symbol,
		OverallScore:  report.OverallScore,
		RiskLevel:     report.RiskLevel,
		Fallback:      usedFallback,
		AttestationTx: report.AttestationTx,
		Report:        models.ReportJSON(*report),
	}
	if hash, err := utils.HashReport(report); err == nil {
		record.ReportHash = hash
	}

	if err := s.store.CreateScanRecord(record); err != nil {
		s.log.Warn().Err(err).Str("token", record.TokenAddress).Msg("failed to persist scan record")
	}
}
