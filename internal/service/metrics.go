package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

// metricVersion tags the formula set. Bump when any formula changes; the
// registry is the single place metric formulas live.
const metricVersion = "v1"

// timeToolName is the one non-numeric tool: it takes no arguments and
// reports the current time from the registry's clock.
const timeToolName = "current_time"

// MetricDefinition is a named, versioned numeric computation. Formulas are
// pure functions of their ordered arguments.
type MetricDefinition struct {
	Name        string
	Label       string
	Version     string
	Description string
	Args        []string
	compute     func(args []float64) (float64, error)
	format      func(value float64) string
}

// MetricResult carries both the raw numeric result and its formatted
// explanation string.
type MetricResult struct {
	Name      string
	Version   string
	Value     float64
	Formatted string
}

// Registry is a fixed, read-only mapping of metric name to definition,
// populated once at startup and injected into whatever needs it.
type Registry struct {
	defs map[string]MetricDefinition
	now  func() time.Time
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*Registry)

// WithClock overrides the registry's time source. Tests pin it.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// ratio builds a compute function dividing args[0] by args[1] and scaling
// the result. Division by zero is a domain error, never an Inf result.
func ratio(scale float64) func(args []float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if args[1] == 0 {
			return 0, domain.ErrDivisionByZero
		}
		return args[0] / args[1] * scale, nil
	}
}

func plain(label string) func(float64) string {
	return func(v float64) string { return fmt.Sprintf("%s: %.2f", label, v) }
}

func percent(label string) func(float64) string {
	return func(v float64) string { return fmt.Sprintf("%s: %.2f%%", label, v) }
}

func dollars(label string) func(float64) string {
	return func(v float64) string { return fmt.Sprintf("%s: $%.2f", label, v) }
}

// NewRegistry builds the fixed metric set.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		defs: make(map[string]MetricDefinition),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	register := func(d MetricDefinition) {
		d.Version = metricVersion
		r.defs[d.Name] = d
	}

	register(MetricDefinition{
		Name:        "stam",
		Label:       "STAM",
		Description: "Successful transactions per active merchant",
		Args:        []string{"successful_transactions", "active_merchants"},
		compute:     ratio(1),
		format:      plain("STAM"),
	})
	register(MetricDefinition{
		Name:        "nrr",
		Label:       "NRR",
		Description: "Net revenue retention: retained revenue over starting revenue",
		Args:        []string{"retained_revenue", "starting_revenue"},
		compute:     ratio(100),
		format:      percent("NRR"),
	})
	register(MetricDefinition{
		Name:        "payment_success_rate",
		Label:       "Payment Success Rate",
		Description: "Successful payment attempts over valid attempts",
		Args:        []string{"successful_attempts", "valid_attempts"},
		compute:     ratio(100),
		format:      percent("Payment Success Rate"),
	})
	register(MetricDefinition{
		Name:        "aov",
		Label:       "AOV",
		Description: "Average order value: total revenue over number of orders",
		Args:        []string{"total_revenue", "order_count"},
		compute:     ratio(1),
		format:      dollars("AOV"),
	})
	register(MetricDefinition{
		Name:        "conversion_rate",
		Label:       "Conversion Rate",
		Description: "Visitors completing the desired action, as a percentage",
		Args:        []string{"conversions", "visitors"},
		compute:     ratio(100),
		format:      percent("Conversion Rate"),
	})
	register(MetricDefinition{
		Name:        "churn_rate",
		Label:       "Churn Rate",
		Description: "Customers lost over total customers, as a percentage",
		Args:        []string{"customers_lost", "total_customers"},
		compute:     ratio(100),
		format:      percent("Churn Rate"),
	})

	return r
}

// Lookup returns the definition for a metric name, matched
// case-insensitively.
func (r *Registry) Lookup(name string) (MetricDefinition, bool) {
	def, ok := r.defs[strings.ToLower(strings.TrimSpace(name))]
	return def, ok
}

// Invoke runs the named tool against a comma-separated argument list and
// returns the result. Unknown names, malformed tokens, and wrong argument
// counts are domain errors; nothing is coerced or dropped silently.
func (r *Registry) Invoke(name, rawArgs string) (*MetricResult, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	if key == timeToolName {
		return r.invokeTime(rawArgs)
	}

	def, ok := r.defs[key]
	if !ok {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeUnknownMetric,
			fmt.Sprintf("no metric named %q", name),
			domain.ErrUnknownMetric,
		)
	}

	args, err := parseArgs(rawArgs, len(def.Args))
	if err != nil {
		return nil, err
	}

	value, err := def.compute(args)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeDivisionByZero,
			fmt.Sprintf("%s argument %q is zero", def.Name, def.Args[1]),
			err,
		)
	}

	return &MetricResult{
		Name:      def.Name,
		Version:   def.Version,
		Value:     value,
		Formatted: def.format(value),
	}, nil
}

func (r *Registry) invokeTime(rawArgs string) (*MetricResult, error) {
	if strings.TrimSpace(rawArgs) != "" {
		return nil, domain.NewDomainError(
			domain.ErrCodeInvalidArguments,
			fmt.Sprintf("%s takes no arguments, got %q", timeToolName, rawArgs),
		)
	}
	return &MetricResult{
		Name:      timeToolName,
		Version:   metricVersion,
		Formatted: r.now().Format("2006-01-02 15:04:05"),
	}, nil
}

// parseArgs parses a comma-separated list of numeric tokens, enforcing the
// expected count.
func parseArgs(rawArgs string, want int) ([]float64, error) {
	tokens := strings.Split(rawArgs, ",")
	if strings.TrimSpace(rawArgs) == "" {
		tokens = nil
	}
	if len(tokens) != want {
		return nil, domain.NewDomainError(
			domain.ErrCodeInvalidArguments,
			fmt.Sprintf("expected %d arguments, got %d", want, len(tokens)),
		)
	}

	args := make([]float64, len(tokens))
	for i, token := range tokens {
		value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return nil, domain.NewDomainError(
				domain.ErrCodeInvalidArguments,
				fmt.Sprintf("argument %d (%q) is not numeric", i+1, strings.TrimSpace(token)),
			)
		}
		args[i] = value
	}
	return args, nil
}

// Descriptors returns the tool surface attached to assembled contexts:
// every metric plus the time tool, in deterministic name order.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.ToolDescriptor, 0, len(names)+1)
	for _, name := range names {
		def := r.defs[name]
		out = append(out, domain.ToolDescriptor{
			Name:        def.Name,
			Version:     def.Version,
			Description: def.Description,
			Args:        append([]string(nil), def.Args...),
		})
	}
	out = append(out, domain.ToolDescriptor{
		Name:        timeToolName,
		Version:     metricVersion,
		Description: "Current date and time",
	})
	return out
}

// FormatDescriptors serializes the tool surface for the tools layer.
func FormatDescriptors(descriptors []domain.ToolDescriptor) string {
	lines := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		if len(d.Args) == 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, d.Description))
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s(%s): %s", d.Name, strings.Join(d.Args, ", "), d.Description))
	}
	return strings.Join(lines, "\n")
}
