package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvraj/mandi/internal/catalog"
	"github.com/nvraj/mandi/internal/config"
	"github.com/nvraj/mandi/internal/core"
	"github.com/nvraj/mandi/internal/engine"
	"github.com/nvraj/mandi/internal/export"
	"github.com/nvraj/mandi/internal/persona"
	"github.com/nvraj/mandi/internal/provider"
	"github.com/nvraj/mandi/internal/storage"
	"github.com/nvraj/mandi/web/handlers"
)

var (
	dbPath       string
	cfgPath      string
	productsPath string
	appConfig    *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mandi",
	Short: "AI-powered mandi price negotiation tool",
	Long: `mandi is a CLI tool that runs simulated price negotiations between
a buyer agent and a seller agent over agricultural commodities.

Pick a product from the catalog, choose personas for both sides and
watch the agents haggle their way to a deal (or a walk-away).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config
		var err error
		if cfgPath != "" {
			appConfig, err = config.LoadFrom(cfgPath)
		} else {
			appConfig, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: ~/.mandi/mandi.db)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: ~/.mandi/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&productsPath, "products", "", "YAML file with extra products")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func getStorage() (storage.Storage, error) {
	path := dbPath
	if path == "" {
		path = storage.DefaultDBPath()
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func getRegistry() (*provider.Registry, error) {
	return appConfig.CreateRegistry()
}

func getCatalog() (*catalog.Catalog, error) {
	extras := appConfig.Products
	if productsPath != "" {
		loaded, err := catalog.LoadFile(productsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load products file: %w", err)
		}
		extras = append(extras, loaded...)
	}
	return catalog.New(extras...), nil
}

func engineConfig() engine.Config {
	return engine.Config{
		MaxRounds:            appConfig.Defaults.MaxRounds,
		MinRounds:            appConfig.Defaults.MinRounds,
		MaxDuration:          appConfig.Defaults.MaxDuration,
		DefaultProvider:      appConfig.Defaults.Provider,
		DefaultBuyerPersona:  persona.ID(appConfig.Defaults.BuyerPersona),
		DefaultSellerPersona: persona.ID(appConfig.Defaults.SellerPersona),
	}
}

// findSessionByPrefix resolves a session ID prefix to a full ID.
func findSessionByPrefix(store storage.Storage, prefix string) (string, error) {
	sessions, err := store.ListSessions(200, 0)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session found with ID prefix: %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous session ID prefix: %s (%d matches)", prefix, len(matches))
	}
}

// ============================================================================
// RUN COMMAND
// ============================================================================

var (
	buyerFlag    string
	sellerFlag   string
	providerFlag string
)

var runCmd = &cobra.Command{
	Use:   "run [product]",
	Short: "Run a negotiation for a product",
	Long: `Run a full negotiation session over the named catalog product.

Examples:
  mandi run "Alphonso Mangoes"
  mandi run "Cardamom" --buyer Aggressive --seller Strategic
  mandi run "Turmeric" --provider mock`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productName := strings.Join(args, " ")

		products, err := getCatalog()
		if err != nil {
			return err
		}
		product, err := products.Get(productName)
		if err != nil {
			return err
		}

		buyerID := persona.ID(buyerFlag)
		if buyerFlag != "" && !persona.Known(buyerID) {
			return fmt.Errorf("unknown buyer persona: %s (see: mandi personas)", buyerFlag)
		}
		sellerID := persona.ID(sellerFlag)
		if sellerFlag != "" && !persona.Known(sellerID) {
			return fmt.Errorf("unknown seller persona: %s (see: mandi personas)", sellerFlag)
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry, err := getRegistry()
		if err != nil {
			return err
		}

		eng := engine.New(store, registry, engineConfig())

		fmt.Printf("\n🛒 Negotiating: %s (%s, %dkg, base ₹%d per quintal)\n",
			product.Name, product.Origin, product.Quantity, product.BaseMarketPrice)
		fmt.Println(strings.Repeat("─", 60))

		record, err := eng.Run(cmd.Context(), engine.SessionRequest{
			BuyerPersona:  buyerID,
			SellerPersona: sellerID,
			Product:       product,
			Provider:      providerFlag,
			OnEvent: func(ev engine.Event) {
				price := ""
				if ev.Price != nil {
					price = fmt.Sprintf(" [₹%d]", *ev.Price)
				}
				fmt.Printf("\n📢 Round %d — %s (%s)%s\n", ev.Round, ev.Side, ev.Persona, price)
				fmt.Println(strings.Repeat("─", 40))
				fmt.Println(ev.Text)
			},
		})
		if err != nil {
			return fmt.Errorf("negotiation failed: %w", err)
		}

		printOutcome(record)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&buyerFlag, "buyer", "b", "", "Buyer persona (default: from config)")
	runCmd.Flags().StringVarP(&sellerFlag, "seller", "s", "", "Seller persona (default: from config)")
	runCmd.Flags().StringVarP(&providerFlag, "provider", "p", "", "Text provider (default: from config)")
}

func printOutcome(record *core.SessionRecord) {
	fmt.Println()
	fmt.Println(strings.Repeat("═", 60))
	switch record.Status {
	case core.StatusDeal:
		fmt.Println("🤝 Deal Reached!")
	case core.StatusWalkedAway:
		fmt.Println("🚶 Walked Away")
	case core.StatusTimedOut:
		fmt.Println("⏱  Timed Out")
	}
	fmt.Println(strings.Repeat("═", 60))

	s := record.Summary
	fmt.Printf("   Session: %s\n", record.ID[:8])
	fmt.Printf("   Rounds: %d of %d\n", record.Rounds.Current, record.Rounds.Max)
	if s.OpeningPrice != nil {
		fmt.Printf("   Opening: ₹%d per quintal\n", *s.OpeningPrice)
	}
	if s.FinalPrice != nil {
		fmt.Printf("   Final: ₹%d per quintal\n", *s.FinalPrice)
	}
	fmt.Printf("   Market: ₹%d per quintal\n", s.MarketPrice)
	if s.Margin != nil {
		fmt.Printf("   Margin: ₹%d (%s)\n", *s.Margin, s.MarginType)
	}
	fmt.Printf("   Buyer profit: %.2f%%  Seller profit: %.2f%%\n", s.BuyerProfitPercent, s.SellerProfitPercent)
	if s.Regret {
		fmt.Println("   ⚠️  Buyer regret: final price above market")
	}
}

// ============================================================================
// PRODUCTS COMMAND
// ============================================================================

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List catalog products",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := getCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCATEGORY\tGRADE\tORIGIN\tQUANTITY\tBASE PRICE")

		for _, p := range products.List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dkg\t₹%d\n",
				p.Name, p.Category, p.QualityGrade, p.Origin, p.Quantity, p.BaseMarketPrice)
		}
		w.Flush()
		return nil
	},
}

// ============================================================================
// PERSONAS COMMAND
// ============================================================================

var personasCmd = &cobra.Command{
	Use:     "personas",
	Short:   "List negotiation personas",
	Aliases: []string{"persona"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("\nPersonas:")
		fmt.Println(strings.Repeat("─", 60))
		for _, p := range persona.All() {
			fmt.Printf("\n%s (margin %.0f%%)\n", p.Name, p.MarginPct*100)
			fmt.Printf("  %s\n", p.Description)
		}
	},
}

// ============================================================================
// PROVIDERS COMMAND
// ============================================================================

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured text providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := getRegistry()
		if err != nil {
			return err
		}

		fmt.Println("\nConfigured Providers:")
		fmt.Println(strings.Repeat("─", 50))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY\tSTATUS")

		for _, p := range registry.List() {
			status := "❌ Unavailable"
			if p.Available() {
				status = "✅ Available"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.DisplayName(), status)
		}
		w.Flush()
		return nil
	},
}

// ============================================================================
// SESSIONS COMMAND
// ============================================================================

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List past negotiation sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.ListSessions(50, 0)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found. Run one with: mandi run \"Alphonso Mangoes\"")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRODUCT\tBUYER\tSELLER\tSTATUS\tFINAL\tCREATED")

		for _, s := range sessions {
			final := "-"
			if s.FinalPrice != nil {
				final = fmt.Sprintf("₹%d", *s.FinalPrice)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				s.ID[:8],
				s.Product,
				s.BuyerPersona,
				s.SellerPersona,
				s.Status,
				final,
				s.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		w.Flush()
		return nil
	},
}

// ============================================================================
// SHOW COMMAND
// ============================================================================

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findSessionByPrefix(store, args[0])
		if err != nil {
			return err
		}

		record, err := store.GetSession(id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("session not found: %s", id)
		}

		fmt.Printf("\n🛒 Negotiation: %s\n", record.Context.Product)
		fmt.Printf("   ID: %s\n", record.ID)
		fmt.Printf("   Status: %s\n", record.Status)
		fmt.Printf("   Buyer: %s  Seller: %s\n", record.BuyerPersona, record.SellerPersona)
		fmt.Printf("   Created: %s\n", record.CreatedAt.Format(time.RFC3339))
		fmt.Println()

		fmt.Println(strings.Repeat("─", 60))
		for _, msg := range record.Messages {
			fmt.Printf("\n%s:\n%s\n", msg.Sender, msg.Text)
		}

		printOutcome(record)
		return nil
	},
}

// ============================================================================
// EXPORT COMMAND
// ============================================================================

var exportCmd = &cobra.Command{
	Use:   "export [id] [format]",
	Short: "Export a session to file",
	Long: `Export a session transcript to markdown, PDF, or JSON.

Examples:
  mandi export abc123 markdown
  mandi export abc123 pdf
  mandi export abc123 json -o session.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := getStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := findSessionByPrefix(store, args[0])
		if err != nil {
			return err
		}

		record, err := store.GetSession(id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("session not found: %s", id)
		}

		format := export.Format(strings.ToLower(args[1]))
		exporter, err := export.GetExporter(format)
		if err != nil {
			return err
		}

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = export.GenerateFilename(record, exporter.FileExtension())
		}

		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()

		if err := exporter.Export(record, file); err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		fmt.Printf("Exported to: %s\n", outputPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}

// ============================================================================
// CONFIG COMMAND
// ============================================================================

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config path: %s\n\n", config.DefaultConfigPath())
		fmt.Printf("Defaults:\n")
		fmt.Printf("  Buyer persona: %s\n", appConfig.Defaults.BuyerPersona)
		fmt.Printf("  Seller persona: %s\n", appConfig.Defaults.SellerPersona)
		fmt.Printf("  Provider: %s\n", appConfig.Defaults.Provider)
		fmt.Printf("  Max rounds: %d\n", appConfig.Defaults.MaxRounds)
		fmt.Printf("  Min rounds: %d\n", appConfig.Defaults.MinRounds)
		fmt.Printf("  Max duration: %s\n", appConfig.Defaults.MaxDuration)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}

		if err := config.Default().Save(path); err != nil {
			return err
		}

		fmt.Printf("Wrote default config to: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// ============================================================================
// SERVE COMMAND
// ============================================================================

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("port") && appConfig.Server.Port != 0 {
			servePort = appConfig.Server.Port
		}

		store, err := getStorage()
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		registry, err := getRegistry()
		if err != nil {
			return err
		}

		products, err := getCatalog()
		if err != nil {
			return err
		}

		h := handlers.New(store, registry, products, engineConfig())

		addr := fmt.Sprintf(":%d", servePort)
		fmt.Printf("\n🌐 Starting mandi server on http://localhost%s\n\n", addr)
		fmt.Println("Available endpoints:")
		fmt.Printf("  POST http://localhost%s/api/negotiate     - Run a negotiation\n", addr)
		fmt.Printf("  GET  http://localhost%s/api/products      - List products\n", addr)
		fmt.Printf("  GET  http://localhost%s/api/sessions      - List sessions\n", addr)
		fmt.Println("\nPress Ctrl+C to stop the server")

		server := &http.Server{
			Addr:    addr,
			Handler: h.Router(),
		}
		return server.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8193, "Server port")
}
