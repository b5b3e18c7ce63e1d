package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"help-desk/auth"
	"help-desk/client"
	"help-desk/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Config is read from the environment, flags override it.
type Config struct {
	Address   string        `envconfig:"HELPDESK_ADDR" default:"http://localhost:8080"`
	Token     string        `envconfig:"HELPDESK_TOKEN"`
	JWTSecret string        `envconfig:"JWT_SECRET"`
	Timeout   time.Duration `envconfig:"HELPDESK_TIMEOUT" default:"90s"`
	Colours   bool          `envconfig:"HELPDESK_COLOURS" default:"true"`
}

var (
	config Config

	addr     string
	app      string
	page     string
	rawJSON  bool
	userID   string
	orgID    string
	role     string
	plan     string
	credits  float64
	validity time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "ask",
	Short: "Command line client of the school help desk",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := envconfig.Process("", &config); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		color.Enable = config.Colours
		return nil
	},
}

var questionCmd = &cobra.Command{
	Use:     "question [text]",
	Short:   "Ask one question and print the answer",
	Example: `  ask question "What temperature should legionella water be?" --app estates-hub`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    askQuestion,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the server health snapshot",
	RunE:  printHealth,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a development bearer token with JWT_SECRET",
	RunE:  signToken,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "server address, overrides HELPDESK_ADDR")

	questionCmd.Flags().StringVar(&app, "app", "", "calling application")
	questionCmd.Flags().StringVar(&page, "page", "", "calling page")
	questionCmd.Flags().BoolVar(&rawJSON, "json", false, "print the raw response")

	tokenCmd.Flags().StringVar(&userID, "user", "dev-user", "caller id")
	tokenCmd.Flags().StringVar(&orgID, "org", "dev-school", "organization id")
	tokenCmd.Flags().StringVar(&role, "role", string(domain.RoleStaff), "caller role")
	tokenCmd.Flags().StringVar(&plan, "plan", string(domain.PlanSchools), "subscription plan")
	tokenCmd.Flags().Float64Var(&credits, "credits", 100, "credits available to the session")
	tokenCmd.Flags().DurationVar(&validity, "validity", 12*time.Hour, "token lifetime")

	rootCmd.AddCommand(questionCmd, healthCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func address() string {
	if addr != "" {
		return addr
	}
	return config.Address
}

func askQuestion(_ *cobra.Command, args []string) error {
	if config.Token == "" {
		return fmt.Errorf("HELPDESK_TOKEN is empty, sign one with: ask token")
	}
	c := client.New(address(), config.Token, config.Timeout)
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	resp, err := c.Ask(ctx, strings.Join(args, " "), domain.QueryContext{App: app, Page: page})
	if err != nil {
		return err
	}
	if rawJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}
	render(resp)
	return nil
}

func render(resp domain.EdResponse) {
	header := color.New(color.BgBlack, color.FgGreen)
	if resp.Outcome == domain.OutcomeBlocked || resp.Outcome == domain.OutcomeError {
		header = color.New(color.BgBlack, color.FgRed)
	}
	fmt.Println(header.Render(fmt.Sprintf("  ====== %s · %s ======", resp.SpecialistID, resp.Outcome)))
	fmt.Println(resp.Text)
	fmt.Println()

	if resp.Perspectives != nil {
		color.Cyan.Println("Perspectives")
		fmt.Println("  optimist: " + resp.Perspectives.Optimist)
		fmt.Println("  critic:   " + resp.Perspectives.Critic)
		fmt.Println("  neutral:  " + resp.Perspectives.Neutral)
		fmt.Println()
	}
	for _, w := range resp.Warnings {
		color.Yellow.Println("! " + w)
	}

	m := resp.Metadata
	table := newTable()
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"Request", m.RequestID},
		{"Domain", string(m.Domain)},
		{"Confidence", string(resp.Confidence)},
		{"Requires human", strconv.FormatBool(resp.RequiresHuman)},
		{"Model", m.Model},
		{"Cached", strconv.FormatBool(m.Cached)},
		{"Calls", strconv.Itoa(m.Usage.Calls)},
		{"Tokens", fmt.Sprintf("%d in / %d out", m.Usage.PromptTokens, m.Usage.CompletionTokens)},
		{"Cost", fmt.Sprintf("%.4f", m.Usage.Cost)},
		{"Credits left", fmt.Sprintf("%.2f", m.CreditsRemaining)},
		{"Took", m.CompletedAt.Sub(m.StartedAt).Round(time.Millisecond).String()},
	})
	for _, s := range resp.Sources {
		table.Append([]string{"Source", s})
	}
	table.Render()
}

func printHealth(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()
	stats, err := client.New(address(), "", config.Timeout).Health(ctx)
	if err != nil {
		return err
	}
	table := newTable()
	table.SetHeader([]string{"Status", "PID", "CPU %", "Alloc MB", "Goroutines", "Sessions", "Requests", "Degraded", "Uptime"})
	table.Append([]string{
		stats.Status,
		strconv.Itoa(stats.PID),
		fmt.Sprintf("%.1f", stats.CPUPercent),
		strconv.FormatUint(stats.AllocMemMb, 10),
		strconv.Itoa(stats.Goroutines),
		strconv.FormatInt(stats.ActiveSessions, 10),
		strconv.FormatUint(stats.Requests, 10),
		strconv.FormatUint(stats.Degraded, 10),
		(time.Duration(stats.UptimeSeconds) * time.Second).String(),
	})
	table.Render()
	return nil
}

func signToken(_ *cobra.Command, _ []string) error {
	if config.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is empty")
	}
	token, err := auth.NewTokens(config.JWTSecret, validity).Generate(auth.Claims{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           domain.Role(role),
		Plan:           domain.Plan(plan),
		Credits:        credits,
		Perspectives:   true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:      fmt.Sprintf("%s-%d", userID, time.Now().Unix()),
			Subject: userID,
		},
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
