package benchmark

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dealscore/internal/model"
)

// MetricSpec describes one benchmarked metric and its reference points.
type MetricSpec struct {
	Key           string `yaml:"key" json:"key"`
	Label         string `yaml:"label" json:"label"`
	Triple        `yaml:",inline"`
	LowerIsBetter bool `yaml:"lower_is_better" json:"lower_is_better"`
}

// Reference maps every module to its ordered metric specs.
type Reference map[model.Module][]MetricSpec

// Metric returns the spec for key within module m.
func (r Reference) Metric(m model.Module, key string) (MetricSpec, bool) {
	for _, spec := range r[m] {
		if spec.Key == key {
			return spec, true
		}
	}
	return MetricSpec{}, false
}

// DefaultReference returns the built-in industry reference table.
func DefaultReference() Reference {
	return Reference{
		model.ModulePortfolioManagement: {
			{Key: "portfolio_irr", Label: "Portfolio IRR (%)", Triple: Triple{15, 20, 28}},
			{Key: "monitoring_cycle_days", Label: "Monitoring Cycle (days)", Triple: Triple{30, 14, 7}, LowerIsBetter: true},
			{Key: "value_creation_multiple", Label: "Value Creation Multiple (MOIC)", Triple: Triple{1.8, 2.3, 3.0}},
		},
		model.ModuleDueDiligence: {
			{Key: "diligence_cycle_days", Label: "Diligence Cycle (days)", Triple: Triple{60, 45, 30}, LowerIsBetter: true},
			{Key: "issue_identification_accuracy", Label: "Issue Identification Accuracy (%)", Triple: Triple{75, 85, 92}},
			{Key: "diligence_cost_ratio", Label: "Diligence Cost (% of deal)", Triple: Triple{2.0, 1.5, 1.0}, LowerIsBetter: true},
		},
		model.ModuleLegal: {
			{Key: "document_turnaround_days", Label: "Document Turnaround (days)", Triple: Triple{10, 6, 3}, LowerIsBetter: true},
			{Key: "contract_accuracy", Label: "Contract Accuracy (%)", Triple: Triple{95, 98, 99.5}},
			{Key: "legal_cost_ratio", Label: "Legal Cost (% of deal)", Triple: Triple{1.5, 1.0, 0.6}, LowerIsBetter: true},
		},
		model.ModuleDealScreening: {
			{Key: "screening_throughput", Label: "Screening Throughput (deals/month)", Triple: Triple{40, 60, 90}},
			{Key: "screen_to_loi_conversion", Label: "Screen-to-LOI Conversion (%)", Triple: Triple{5, 8, 12}},
			{Key: "screening_cycle_days", Label: "Screening Cycle (days)", Triple: Triple{14, 7, 3}, LowerIsBetter: true},
		},
		model.ModuleFundOperations: {
			{Key: "operating_expense_ratio", Label: "Operating Expense Ratio (%)", Triple: Triple{1.8, 1.4, 1.0}, LowerIsBetter: true},
			{Key: "reporting_lag_days", Label: "Reporting Lag (days)", Triple: Triple{45, 30, 20}, LowerIsBetter: true},
			{Key: "capital_call_accuracy", Label: "Capital Call Accuracy (%)", Triple: Triple{97, 99, 99.8}},
		},
		model.ModuleInvestmentCommittee: {
			{Key: "decision_cycle_days", Label: "Decision Cycle (days)", Triple: Triple{21, 14, 7}, LowerIsBetter: true},
			{Key: "post_approval_success_rate", Label: "Post-Approval Success Rate (%)", Triple: Triple{65, 75, 85}},
			{Key: "memo_completeness", Label: "Memo Completeness (%)", Triple: Triple{85, 92, 97}},
		},
		model.ModuleMarketIntelligence: {
			{Key: "sectors_covered", Label: "Sectors Covered", Triple: Triple{8, 12, 18}},
			{Key: "signal_accuracy", Label: "Signal Accuracy (%)", Triple: Triple{60, 70, 80}},
			{Key: "research_latency_hours", Label: "Research Latency (hours)", Triple: Triple{48, 24, 8}, LowerIsBetter: true},
		},
	}
}

// ValidateReference checks that every module has metrics and that each
// triple is ordered in the metric's better direction.
func ValidateReference(ref Reference) error {
	var errs []string
	for _, m := range model.Modules {
		specs, ok := ref[m]
		if !ok || len(specs) == 0 {
			errs = append(errs, fmt.Sprintf("%s: no metrics", m))
			continue
		}
		seen := make(map[string]bool, len(specs))
		for _, s := range specs {
			name := fmt.Sprintf("%s.%s", m, s.Key)
			if s.Key == "" {
				errs = append(errs, fmt.Sprintf("%s: metric with empty key", m))
				continue
			}
			if seen[s.Key] {
				errs = append(errs, fmt.Sprintf("%s: duplicate metric", name))
			}
			seen[s.Key] = true

			if s.Median <= 0 {
				errs = append(errs, fmt.Sprintf("%s: median must be > 0", name))
			}
			if s.LowerIsBetter {
				if !(s.Median >= s.TopQuartile && s.TopQuartile >= s.TopDecile) {
					errs = append(errs, fmt.Sprintf("%s: lower-is-better requires median >= top_quartile >= top_decile", name))
				}
			} else if !(s.Median <= s.TopQuartile && s.TopQuartile <= s.TopDecile) {
				errs = append(errs, fmt.Sprintf("%s: higher-is-better requires median <= top_quartile <= top_decile", name))
			}
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("benchmark: reference validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadReference reads a YAML overlay from path on top of DefaultReference.
// An empty path returns the defaults.
func LoadReference(path string) (Reference, error) {
	if path == "" {
		return DefaultReference(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "benchmark: open reference %s", path)
	}
	defer f.Close() //nolint:errcheck
	return DecodeReference(f)
}

// DecodeReference merges a YAML overlay of the form
//
//	legal:
//	  document_turnaround_days: {median: 9, top_quartile: 5, top_decile: 2, lower_is_better: true}
//
// onto DefaultReference. Listed metrics replace existing specs with the same
// key; new keys are appended in sorted order.
func DecodeReference(r io.Reader) (Reference, error) {
	var ov map[string]map[string]MetricSpec
	if err := yaml.NewDecoder(r).Decode(&ov); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "benchmark: decode reference")
	}

	ref := DefaultReference()
	var errs []string
	for modKey, metrics := range ov {
		m := model.Module(strings.ToLower(strings.TrimSpace(modKey)))
		if _, ok := ref[m]; !ok {
			errs = append(errs, fmt.Sprintf("unknown module %q", modKey))
			continue
		}

		keys := make([]string, 0, len(metrics))
		for k := range metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			spec := metrics[k]
			spec.Key = k
			replaced := false
			for i := range ref[m] {
				if ref[m][i].Key == k {
					if spec.Label == "" {
						spec.Label = ref[m][i].Label
					}
					ref[m][i] = spec
					replaced = true
					break
				}
			}
			if !replaced {
				if spec.Label == "" {
					spec.Label = k
				}
				ref[m] = append(ref[m], spec)
			}
		}
	}
	if len(errs) > 0 {
		return nil, eris.Errorf("benchmark: reference overlay: %s", strings.Join(errs, "; "))
	}
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	return ref, nil
}
