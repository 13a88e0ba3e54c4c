package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Veraticus/bento/internal/common"
	"github.com/Veraticus/bento/internal/ledger"
	"github.com/Veraticus/bento/internal/model"
	"github.com/Veraticus/bento/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Backend names where the workbook lives.
type Backend string

// Supported backends.
const (
	BackendSheets Backend = "sheets"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Statement holds the account details printed on exports.
type Statement struct {
	Owner    string
	Currency string
	Product  string
}

// Server holds the HTTP API settings.
type Server struct {
	Addr      string
	RateLimit float64
	Burst     int
}

// App is the resolved application configuration.
type App struct {
	MonitoringStart time.Time
	Statement       Statement
	Server          Server
	Backend         Backend
	DatabasePath    string
	PaymentMethods  []string
	Categories      model.Categories
	Budget          report.BudgetPlan
	CacheTTL        time.Duration
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	cats := model.DefaultCategories()
	v.SetDefault("backend", string(BackendSheets))
	v.SetDefault("database.path", "~/.local/share/bento/bento.db")
	v.SetDefault("ledger.cache_ttl", ledger.DefaultCacheTTL)
	v.SetDefault("ledger.monitoring_start", ledger.DefaultMonitoringStart.Format(model.DateLayout))
	v.SetDefault("categories.income", cats.Income)
	v.SetDefault("categories.expense", cats.Expense)
	v.SetDefault("payment_methods", model.DefaultPaymentMethods())
	v.SetDefault("budget.income", 5000000)
	v.SetDefault("budget.mode", string(report.BudgetNominal))
	v.SetDefault("statement.owner", "Pengguna Utama")
	v.SetDefault("statement.currency", "IDR")
	v.SetDefault("statement.product", "Bento Finance Tracker")
	v.SetDefault("server.addr", "127.0.0.1:8088")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.burst", 20)
}

// Load resolves the application configuration from v.
func Load(v *viper.Viper) (*App, error) {
	app := &App{
		Backend:        Backend(strings.ToLower(v.GetString("backend"))),
		DatabasePath:   ExpandPath(v.GetString("database.path")),
		CacheTTL:       v.GetDuration("ledger.cache_ttl"),
		PaymentMethods: v.GetStringSlice("payment_methods"),
		Categories: model.Categories{
			Income:  v.GetStringSlice("categories.income"),
			Expense: v.GetStringSlice("categories.expense"),
		},
		Statement: Statement{
			Owner:    v.GetString("statement.owner"),
			Currency: v.GetString("statement.currency"),
			Product:  v.GetString("statement.product"),
		},
		Server: Server{
			Addr:      v.GetString("server.addr"),
			RateLimit: v.GetFloat64("server.rate_limit"),
			Burst:     v.GetInt("server.burst"),
		},
	}

	switch app.Backend {
	case BackendSheets, BackendSQLite, BackendMemory:
	default:
		return nil, fmt.Errorf("%w: backend %q (want sheets, sqlite or memory)", common.ErrInvalidConfig, app.Backend)
	}

	start, err := time.Parse(model.DateLayout, v.GetString("ledger.monitoring_start"))
	if err != nil {
		return nil, fmt.Errorf("%w: ledger.monitoring_start: %w", common.ErrInvalidConfig, err)
	}
	app.MonitoringStart = start

	if len(app.Categories.Income) == 0 || len(app.Categories.Expense) == 0 {
		return nil, fmt.Errorf("%w: category lists cannot be empty", common.ErrInvalidConfig)
	}

	budget, err := loadBudget(v, app.Categories.Expense)
	if err != nil {
		return nil, err
	}
	app.Budget = budget

	return app, nil
}

// loadBudget reads budget.allocations. Viper lowercases map keys, so keys
// are matched to expense categories without regard to case; the plan lists
// every expense category in configured order.
func loadBudget(v *viper.Viper, expense []string) (report.BudgetPlan, error) {
	mode, err := report.ParseBudgetMode(v.GetString("budget.mode"))
	if err != nil {
		return report.BudgetPlan{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	income, err := toDecimal(v.Get("budget.income"))
	if err != nil {
		return report.BudgetPlan{}, fmt.Errorf("%w: budget.income: %w", common.ErrInvalidConfig, err)
	}

	raw := v.GetStringMap("budget.allocations")
	values := make(map[string]decimal.Decimal, len(raw))
	for key, val := range raw {
		idx := slices.IndexFunc(expense, func(c string) bool { return strings.EqualFold(c, key) })
		if idx < 0 {
			return report.BudgetPlan{}, fmt.Errorf("%w: budget.allocations.%s is not an expense category", common.ErrInvalidConfig, key)
		}
		d, err := toDecimal(val)
		if err != nil {
			return report.BudgetPlan{}, fmt.Errorf("%w: budget.allocations.%s: %w", common.ErrInvalidConfig, key, err)
		}
		values[expense[idx]] = d
	}

	plan := report.BudgetPlan{Income: income, Mode: mode}
	for _, c := range expense {
		plan.Inputs = append(plan.Inputs, report.BudgetInput{Category: c, Value: values[c]})
	}
	return plan, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	}
	return decimal.NewFromString(fmt.Sprint(v))
}
