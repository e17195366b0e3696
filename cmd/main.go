package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	pushbullet "github.com/ochronus/gopushbullet"
	"github.com/ochronus/gopushbullet/internal/app"
	"github.com/ochronus/gopushbullet/internal/config"
	"github.com/ochronus/gopushbullet/internal/http"
	"github.com/ochronus/gopushbullet/internal/relay"
	"github.com/ochronus/gopushbullet/internal/utils"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configPath string

	pushTitle string
	pushBody  string
	pushURL   string

	targetDevice  string
	targetEmail   string
	targetChannel string

	uploadBody string
	uploadType string
)

func main() {
	// Get default config path
	defaultConfigPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultConfigPath = "./config.toml"
	}

	// Root command
	rootCmd := &cobra.Command{
		Use:   "gopushbullet",
		Short: "PushBullet client and relay",
		Long: "Client for the PushBullet v2 API. Sends notes, links and files from the command line " +
			"and can run a small authenticated HTTP relay for other processes on the host.",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to config file")

	getUserCmd := &cobra.Command{
		Use:   "get-user",
		Short: "Show the authenticated user",
		RunE:  runGetUser,
	}

	listDevicesCmd := &cobra.Command{
		Use:   "list-devices",
		Short: "List the account's devices",
		RunE:  runListDevices,
	}

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Send a note or link push",
		RunE:  runPush,
	}
	pushCmd.Flags().StringVar(&pushTitle, "title", "", "Push title")
	pushCmd.Flags().StringVar(&pushBody, "body", "", "Push body")
	pushCmd.Flags().StringVar(&pushURL, "url", "", "Link URL (makes the push a link)")
	addTargetFlags(pushCmd)

	uploadCmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file and push it",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}
	uploadCmd.Flags().StringVar(&uploadBody, "body", "", "Message to go with the file")
	uploadCmd.Flags().StringVar(&uploadType, "file-type", "", "MIME type (default: derived from the file name)")
	addTargetFlags(uploadCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay server",
		RunE:  runServe,
	}

	generateConfigCmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.GenerateConfig(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gopushbullet version %s\n", version)
		},
	}

	rootCmd.AddCommand(getUserCmd)
	rootCmd.AddCommand(listDevicesCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&targetDevice, "device", "", "Target device iden (see list-devices)")
	cmd.Flags().StringVar(&targetEmail, "email", "", "Target email address")
	cmd.Flags().StringVar(&targetChannel, "channel", "", "Target channel tag")
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newClient builds a client from the environment token or the config file.
func newClient() (*pushbullet.Client, error) {
	token := config.TokenFromEnv()
	if token == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("no %s set and no config file: %w", config.EnvToken, err)
		}
		token = cfg.Token()
	}
	if token == "" {
		return nil, fmt.Errorf("no access token: set %s or pushbullet.api_key in %s", config.EnvToken, configPath)
	}

	return pushbullet.NewClient(token)
}

// target builds the push target from the target flags.
func target() (pushbullet.PushTarget, error) {
	set := 0
	result := pushbullet.TargetSelf()

	if targetDevice != "" {
		set++
		result = pushbullet.TargetDevice(targetDevice)
	}
	if targetEmail != "" {
		set++
		result = pushbullet.TargetEmail(targetEmail)
	}
	if targetChannel != "" {
		set++
		result = pushbullet.TargetChannel(targetChannel)
	}

	if set > 1 {
		return result, fmt.Errorf("at most one of --device, --email and --channel may be set")
	}
	return result, nil
}

func runGetUser(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	user, err := client.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	fmt.Printf("Name:  %s\n", user.Name)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Iden:  %s\n", user.Iden)
	return nil
}

func runListDevices(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	devices, err := client.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	for _, device := range devices {
		if !device.Active {
			continue
		}
		nickname := device.Nickname
		if nickname == "" {
			nickname = "(unnamed)"
		}
		fmt.Printf("%s  %s\n", device.Iden, nickname)
	}
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	to, err := target()
	if err != nil {
		return err
	}

	var data pushbullet.PushData
	if pushURL != "" {
		data = pushbullet.Link{Title: pushTitle, Body: pushBody, URL: pushURL}
	} else {
		if pushBody == "" && pushTitle == "" {
			return fmt.Errorf("nothing to push: set --title, --body or --url")
		}
		data = pushbullet.Note{Title: pushTitle, Body: pushBody}
	}

	if err := client.Push(ctx, to, data); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	client, err := newClient()
	if err != nil {
		return err
	}

	to, err := target()
	if err != nil {
		return err
	}

	path := args[0]
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileName := filepath.Base(path)
	fileType := uploadType
	if fileType == "" {
		fileType = mime.TypeByExtension(filepath.Ext(fileName))
	}
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	if err := client.PushFile(ctx, to, uploadBody, fileName, fileType, file); err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Build container with shared dependencies
	container, err := app.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	container.Logger.Infof("Starting gopushbullet relay, version %s", version)

	// Start the push dispatcher
	dispatcher := relay.NewDispatcher(container)
	if err := dispatcher.StartWithContext(ctx); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer dispatcher.Stop()

	// Start HTTP server
	server := http.NewServer(container, dispatcher)
	return server.StartWithContext(ctx)
}
