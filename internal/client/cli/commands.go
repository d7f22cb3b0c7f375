package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clientapi "github.com/iudanet/atmtrack/internal/client/api"
	"github.com/iudanet/atmtrack/internal/client/gateway"
	"github.com/iudanet/atmtrack/internal/client/iocli"
	"github.com/iudanet/atmtrack/internal/client/maintenance"
	"github.com/iudanet/atmtrack/internal/client/session"
	"github.com/iudanet/atmtrack/internal/client/storage/boltdb"
	"github.com/iudanet/atmtrack/internal/config"
	"github.com/iudanet/atmtrack/pkg/api"
)

// BuildInfo версия клиента, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// app хранит зависимости, созданные перед выполнением команды
type app struct {
	io      iocli.IO
	viper   *viper.Viper
	store   *boltdb.Storage
	manager *session.Manager
	cli     *Cli
	logger  *slog.Logger
	stderr  io.Writer

	configFile string
}

// Execute собирает дерево команд и выполняет его с аргументами args.
// Ресурсы (база сессии, таймер обновления) освобождаются и при ошибке команды.
func Execute(ctx context.Context, stdio iocli.IO, stderr io.Writer, info BuildInfo, args []string) error {
	a := &app{
		io:     stdio,
		viper:  config.NewClientViper(),
		logger: slog.New(slog.NewTextHandler(stderr, nil)),
		stderr: stderr,
	}
	defer a.close()

	root, err := a.rootCommand(info)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	root.SetOut(stdio)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand(info BuildInfo) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "atmtrack",
		Short:         "ATM maintenance tracking client",
		Long:          "Command line client for the ATM maintenance tracking service.\nTechnicians list their devices, supervisors review visit reports, hosts manage technicians.",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsSession(cmd) {
				return nil
			}
			return a.open(cmd.Context())
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("ATMTrack Client\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n",
		info.Version, info.BuildDate, info.GitCommit))

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to config file (yaml, json or toml)")
	flags.String("server", "http://localhost:8080/api", "API base URL")
	flags.String("db", "atmtrack-client.db", "path to local session database")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Duration("request-timeout", clientapi.DefaultTimeout, "HTTP request timeout")
	flags.Duration("refresh-lead-time", session.DefaultLeadTime, "refresh access token this long before it expires")
	if err := config.BindFlags(a.viper, flags); err != nil {
		return nil, err
	}

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.devicesCommand(),
		a.submissionsCommand(),
		a.statsCommand(),
		a.techniciansCommand(),
	)
	return root, nil
}

// needsSession сообщает, нужно ли открывать базу сессии для команды
func needsSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" || c.Name() == cobra.ShellCompRequestCmd {
			return false
		}
	}
	return true
}

// open загружает конфигурацию, открывает базу и восстанавливает сессию
func (a *app) open(ctx context.Context) error {
	cfg, err := config.LoadClient(a.viper, a.configFile)
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger = logger

	store, err := boltdb.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	a.store = store

	client := clientapi.NewClient(cfg.Server, clientapi.WithTimeout(cfg.RequestTimeout))
	a.manager = session.New(client, store,
		session.WithLeadTime(cfg.RefreshLeadTime),
		session.WithLogger(logger),
	)
	gw := gateway.New(client, a.manager, logger)
	a.cli = New(a.io, a.manager, maintenance.NewService(gw))

	state := a.manager.Restore(ctx)
	logger.Debug("session restored", slog.String("state", state.String()), slog.String("server", client.BaseURL()))
	return nil
}

func (a *app) close() {
	if a.manager != nil {
		a.manager.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close local database", slog.Any("error", err))
		}
	}
}

func (a *app) loginCommand() *cobra.Command {
	var (
		username  string
		passwords = Passwords{Env: PasswordEnv}
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to server",
		Long: `Login to server and save the session locally.

Password priority (highest to lowest):
  1. ATMTRACK_PASSWORD environment variable
  2. --password-file (file path)
  3. --password (command line, not recommended)
  4. Interactive prompt (fallback)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runLogin(cmd.Context(), username, passwords)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted if empty)")
	cmd.Flags().StringVar(&passwords.FromArgs, "password", "", "password (not recommended, use env var or file)")
	cmd.Flags().StringVar(&passwords.FromFile, "password-file", "", "path to file containing password")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runLogout(cmd.Context())
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runStatus(cmd.Context())
		},
	}
}

func (a *app) devicesCommand() *cobra.Command {
	var opts DevicesOptions
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List devices assigned to the technician",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runDevices(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "", "device type: Cleaning, Electrical or All")
	cmd.Flags().StringVar(&opts.Region, "region", "", "region substring")
	cmd.Flags().StringVar(&opts.Status, "status", "", "submission status for the current half month: submitted, pending or All")
	cmd.Flags().StringVar(&opts.Search, "search", "", "search by interaction id or cost center")

	var submitOpts SubmitOptions
	submit := &cobra.Command{
		Use:   "submit <device-id>",
		Short: "Submit a visit report for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runSubmit(cmd.Context(), id, submitOpts)
		},
	}
	submit.Flags().StringVar(&submitOpts.VisitDate, "visit-date", "", "visit date YYYY-MM-DD (default today)")
	submit.Flags().StringVar(&submitOpts.JobStatus, "job-status", api.JobOk, `job result: "Ok" or "Not Ok"`)
	submit.Flags().StringVar(&submitOpts.Remarks, "remarks", "", "optional remarks")

	cmd.AddCommand(submit)
	return cmd
}

func (a *app) submissionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"sub"},
		Short:   "Review technician visit reports",
	}

	var opts SubmissionsOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runSubmissions(cmd.Context(), opts)
		},
	}
	list.Flags().StringVar(&opts.Filter.Status, "status", "", "Pending, Approved, Rejected or All")
	list.Flags().StringVar(&opts.Filter.DeviceType, "type", "", "device type: Cleaning, Electrical or All")
	list.Flags().StringVar(&opts.Filter.City, "city", "", "technician city")
	list.Flags().Int64Var(&opts.Filter.TechnicianID, "technician", 0, "technician id")
	list.Flags().StringVar(&opts.Filter.DateFrom, "from", "", "visit date from (YYYY-MM-DD)")
	list.Flags().StringVar(&opts.Filter.DateTo, "to", "", "visit date to (YYYY-MM-DD)")
	list.Flags().StringVar(&opts.Search, "search", "", "search by interaction id or technician")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show submission details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runSubmissionShow(cmd.Context(), id)
		},
	}

	var approveRemarks string
	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runApprove(cmd.Context(), id, approveRemarks)
		},
	}
	approve.Flags().StringVar(&approveRemarks, "remarks", "", "optional remarks")

	var rejectRemarks string
	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runReject(cmd.Context(), id, rejectRemarks)
		},
	}
	reject.Flags().StringVar(&rejectRemarks, "remarks", "", "rejection reason (prompted if empty)")

	cmd.AddCommand(list, show, approve, reject)
	return cmd
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runStats(cmd.Context())
		},
	}
}

func (a *app) techniciansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "technicians",
		Aliases: []string{"tech"},
		Short:   "Manage technician accounts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List technicians",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runTechnicians(cmd.Context())
		},
	}

	var createOpts CreateTechnicianOptions
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a technician account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cli.runCreateTechnician(cmd.Context(), createOpts)
		},
	}
	create.Flags().StringVar(&createOpts.Username, "username", "", "technician username")
	create.Flags().StringVar(&createOpts.City, "city", "", "technician city")
	create.Flags().StringVar(&createOpts.Passwords.FromArgs, "password", "", "technician password (not recommended)")
	create.Flags().StringVar(&createOpts.Passwords.FromFile, "password-file", "", "path to file containing technician password")

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a technician with their devices and submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runDeleteTechnician(cmd.Context(), id, yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	var deviceType string
	upload := &cobra.Command{
		Use:   "upload <technician-id> <file.xlsx>",
		Short: "Upload a device list spreadsheet and assign the devices to a technician",
		Long: `Upload a device list spreadsheet and assign the devices to a technician.

Columns without a header row: Interaction ID, GFM Cost Center, GFM Problem Type,
GFM Problem Date, City, Status. With a header row columns are matched by name.
Devices that already exist are assigned without changes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runUploadDevices(cmd.Context(), id, args[1], deviceType)
		},
	}
	upload.Flags().StringVar(&deviceType, "type", api.TypeCleaning1,
		"type of new devices: "+strings.Join(api.DeviceTypes, ", "))

	uploads := &cobra.Command{
		Use:   "uploads <technician-id>",
		Short: "Show device list uploads for a technician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.cli.runUploads(cmd.Context(), id)
		},
	}

	cmd.AddCommand(list, create, del, upload, uploads)
	return cmd
}

// ExitCode возвращает код завершения для ошибки команды
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case gateway.IsKind(err, gateway.KindAuth):
		return 2
	default:
		return 1
	}
}
