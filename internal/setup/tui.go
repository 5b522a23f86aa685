// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/buylow/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

const title = "BUY LOW CONFIG WIZARD"

func screen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render(title))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI asks for the budget and watchlist and writes the config to path.
func RunTUI(path string) error {
	var (
		amountStr   = "500"
		equitiesStr = "QQQ, SPY, DIA"
		periodType  = "month"
		walDir      string
		usePostgres bool
		confirm     bool
	)

	screen("STEP 1: BUDGET")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("The most you are willing to spend on a single run.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum amount ($)").
				Value(&amountStr).
				Validate(validateAmount),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 2: WATCHLIST")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Equities").
				Description("Comma separated symbols (e.g. QQQ, SPY, DIA)").
				Value(&equitiesStr).
				Validate(func(s string) error {
					if len(ParseSymbols(s)) == 0 {
						return fmt.Errorf("enter at least one symbol")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Lookback").
				Options(
					huh.NewOption("One month", "month"),
					huh.NewOption("One year", "year"),
					huh.NewOption("Year to date", "ytd"),
				).
				Value(&periodType),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("STEP 3: ORDER LOG")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Local order journal directory").
				Description("Leave empty to disable").
				Value(&walDir),
			huh.NewConfirm().
				Title("Record orders in PostgreSQL?").
				Description("Uses "+config.EnvPostgresDSN).
				Value(&usePostgres),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg, err := buildConfig(amountStr, equitiesStr, periodType, walDir, usePostgres)
	if err != nil {
		return err
	}

	screen("FINAL CONFIRMATION")
	summary := fmt.Sprintf("Maximum amount: $%s\nEquities: %s\nLookback: %s\n",
		cfg.MaximumAmount.StringFixed(2), strings.Join(cfg.Equities, ", "), cfg.Lookback.PeriodType)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(
		fmt.Sprintf("\n✓ Configuration saved to %s\nRun without --live first to review the decision.", path)))
	return nil
}

func buildConfig(amountStr, equitiesStr, periodType, walDir string, usePostgres bool) (config.Config, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid maximum amount: %w", err)
	}

	cfg := config.Config{
		MaximumAmount: amount,
		Equities:      ParseSymbols(equitiesStr),
		Lookback:      config.Lookback{PeriodType: periodType, Period: 1, FrequencyType: "daily"},
		OrderLog: config.OrderLog{
			WALDir:   strings.TrimSpace(walDir),
			Postgres: usePostgres,
		},
	}
	if periodType == "ytd" {
		cfg.Lookback.Period = 0
	}
	return cfg, cfg.Validate()
}

// ParseSymbols splits a comma or space separated list into upper-case symbols.
func ParseSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToUpper(f))
	}
	return out
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
