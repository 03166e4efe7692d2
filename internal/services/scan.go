package services

import (
	"context"
	"sync/atomic"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/ortelius/forkpoint-cves/internal/clients"
	"github.com/ortelius/forkpoint-cves/internal/workers"
	"github.com/ortelius/forkpoint-cves/model"
	"github.com/ortelius/forkpoint-cves/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// VulnQuerier looks up the vulnerabilities recorded against a package URL
type VulnQuerier interface {
	Query(ctx context.Context, purl string) ([]models.Vulnerability, error)
}

// ItemRunner drains a queue of work items
type ItemRunner interface {
	Run(ctx context.Context, items []model.WorkItem, perItem workers.ItemFunc) error
}

var (
	_ VulnQuerier = (*clients.OSVClient)(nil)
	_ ItemRunner  = (*workers.Pool)(nil)
)

// ScanResult is the aggregated outcome of a vulnerability scan
type ScanResult struct {
	Records    []model.VulnerabilityRecord
	Remediated []model.RemediationSummary
	Queried    int
	Failed     int
	Skipped    int
}

// VulnScanService queries every fork point and merges the vulnerabilities that affect it
type VulnScanService struct {
	osv               VulnQuerier
	runner            ItemRunner
	ecosystemVersions bool
	logger            *zap.Logger
}

// NewVulnScanService wires the querier and runner.
// With ecosystemVersions set, ranges are compared in the package registry's own
// version grammar instead of the numeric one.
func NewVulnScanService(osv VulnQuerier, runner ItemRunner, ecosystemVersions bool, logger *zap.Logger) *VulnScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VulnScanService{osv: osv, runner: runner, ecosystemVersions: ecosystemVersions, logger: logger}
}

// Scan runs every fork point through the runner and returns the merged records.
// A failed query is logged and counted; it never aborts the scan.
func (s *VulnScanService) Scan(ctx context.Context, forkPoints []model.ForkPoint) (*ScanResult, error) {
	agg := NewAggregator()
	var queried, failed, skipped atomic.Int64

	items := lo.Map(forkPoints, func(fp model.ForkPoint, _ int) model.WorkItem { return fp.WorkItem() })
	s.logger.Sugar().Infof("Scanning %d fork points", len(items))

	err := s.runner.Run(ctx, items, func(ctx context.Context, item model.WorkItem) {
		outcome, ok := s.query(ctx, item)
		if !ok {
			skipped.Add(1)
			return
		}
		queried.Add(1)
		if outcome.Err != nil {
			failed.Add(1)
			s.logger.Error("Vulnerability query failed",
				zap.String("component", item.Component),
				zap.String("forkPoint", item.ForkPoint),
				zap.Error(outcome.Err))
			return
		}
		s.match(outcome, agg)
	})
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Records:    agg.Records(),
		Remediated: Summarize(agg.RemediationCounts()),
		Queried:    int(queried.Load()),
		Failed:     int(failed.Load()),
		Skipped:    int(skipped.Load()),
	}
	s.logger.Sugar().Infof("Scan complete: %d vulnerabilities, %d queries, %d failed, %d skipped",
		len(result.Records), result.Queried, result.Failed, result.Skipped)
	return result, nil
}

// query returns false when the item's component is not a usable PURL
func (s *VulnScanService) query(ctx context.Context, item model.WorkItem) (model.QueryOutcome, bool) {
	if util.ParsePurl(item.Component) == nil {
		s.logger.Warn("Skipping malformed component", zap.String("component", item.Component))
		return model.QueryOutcome{}, false
	}
	purl, err := util.BasePurl(item.Component)
	if err != nil {
		s.logger.Warn("Skipping malformed component", zap.String("component", item.Component), zap.Error(err))
		return model.QueryOutcome{}, false
	}

	vulns, err := s.osv.Query(ctx, purl)
	return model.QueryOutcome{Item: item, Vulns: vulns, Err: err}, true
}

func (s *VulnScanService) match(outcome model.QueryOutcome, agg *Aggregator) {
	matcher := util.NewRangeMatcher(s.comparer(outcome.Item.Component))

	matched := 0
	for _, vuln := range outcome.Vulns {
		if !matcher.IsAffected(vuln, outcome.Item.ForkPoint) {
			continue
		}
		if !agg.Record(vuln, outcome.Item.Component) {
			s.logger.Warn("Skipping vulnerability without an id",
				zap.String("component", outcome.Item.Component),
				zap.String("summary", vuln.Summary))
			continue
		}
		matched++
	}
	s.logger.Debug("Matched vulnerabilities",
		zap.String("component", outcome.Item.Component),
		zap.String("forkPoint", outcome.Item.ForkPoint),
		zap.Int("returned", len(outcome.Vulns)),
		zap.Int("matched", matched))
}

func (s *VulnScanService) comparer(component string) util.Comparer {
	if !s.ecosystemVersions {
		return util.NumericComparer
	}
	return util.ComparerFor(util.ParsePurl(component).Registry)
}
