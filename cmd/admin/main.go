package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"curiousminds/internal/config"
	"curiousminds/internal/database"
	"curiousminds/internal/models"
	"curiousminds/internal/registry"
	"curiousminds/internal/remote"
	"curiousminds/internal/repository"
	"curiousminds/internal/service"
)

type app struct {
	cfg *config.Config

	users   *service.UserService
	bank    *service.BankService
	syncSvc *service.SyncService
	backup  *service.BackupService
	sysCfg  *service.ConfigService
	results *service.ResultService
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	localDB, err := database.OpenLocal(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	defer localDB.Close()

	if err := localDB.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(localDB)
	wordRepo := repository.NewWordRepository(localDB)
	userRepo := repository.NewUserRepository(localDB)
	resultRepo := repository.NewResultRepository(localDB)
	configRepo := repository.NewConfigRepository(localDB)
	sessionRepo := repository.NewSessionRepository(localDB)
	metaRepo := repository.NewMetaRepository(localDB)

	var remoteStore remote.Store = remote.Disabled{}
	if cfg.RemoteDBType != "" {
		remoteDB, err := database.OpenRemote(cfg.RemoteDBType, cfg.RemoteDBURL)
		if err != nil {
			log.Fatalf("Failed to configure remote store: %v", err)
		}
		defer remoteDB.Close()
		remoteStore = remote.NewSQLStore(remoteDB, cfg.RemoteTimeout)
	}

	registryURL := cfg.RegistryURL
	if registryURL == "" {
		registryURL = configRepo.Get().RegistryURL
	}
	var registryClient *registry.Client
	if registryURL != "" {
		registryClient = registry.NewClient(registryURL)
	}

	emailSvc, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	a := &app{
		cfg:     cfg,
		users:   service.NewUserService(userRepo, sessionRepo, remoteStore, emailSvc, cfg.SessionSecret, cfg.SessionDuration),
		bank:    service.NewBankService(questionRepo, wordRepo, remoteStore, registryClient, nil),
		syncSvc: service.NewSyncService(questionRepo, metaRepo, remoteStore, cfg.SyncFreshness, cfg.SyncMinLocalCount),
		backup:  service.NewBackupService(questionRepo, wordRepo, userRepo, resultRepo, configRepo),
		sysCfg:  service.NewConfigService(configRepo, remoteStore),
		results: service.NewResultService(resultRepo, sessionRepo, configRepo, remoteStore, cfg.ResultWebhookURL),
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "sync":
		a.runSync(ctx, os.Args[2:])
	case "generate-math":
		a.runGenerateMath(ctx, os.Args[2:])
	case "generate-vocab":
		a.runGenerateVocab(ctx, os.Args[2:])
	case "registry-sync":
		a.runRegistrySync(ctx, os.Args[2:], registryClient)
	case "provision-user":
		a.runProvisionUser(ctx, os.Args[2:])
	case "delete-user":
		a.runDeleteUser(ctx, os.Args[2:])
	case "list-users":
		a.runListUsers()
	case "list-results":
		a.runListResults(os.Args[2:])
	case "export":
		a.runExport(os.Args[2:])
	case "import":
		a.runImport(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func (a *app) runSync(ctx context.Context, args []string) {
	cmd := flag.NewFlagSet("sync", flag.ExitOnError)
	force := cmd.Bool("force", false, "Pull even when the local cache is fresh")
	cmd.Parse(args)

	ran, err := a.syncSvc.Refresh(ctx, *force)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}
	if !ran {
		log.Println("Local cache is fresh, nothing to do (use -force to pull anyway)")
		return
	}
	log.Println("Sync complete")
}

func (a *app) runGenerateMath(ctx context.Context, args []string) {
	cmd := flag.NewFlagSet("generate-math", flag.ExitOnError)
	level := cmd.String("level", "", "Math level id (required, e.g. novice)")
	bases := cmd.String("bases", "", "Comma-separated base numbers (required)")
	sets := cmd.Int("sets", 0, "Number of sets (default: the level's configured limit)")
	cmd.Parse(args)

	if *level == "" || *bases == "" {
		fmt.Println("Error: -level and -bases are required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	numSets := *sets
	if numSets == 0 {
		numSets = a.sysCfg.Get().MathLimits[*level]
	}
	if numSets <= 0 {
		log.Fatalf("No set count configured for %s; pass -sets", *level)
	}

	count, err := a.bank.GenerateMathBank(ctx, *level, *bases, numSets)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	log.Printf("Generated %d questions for %s", count, *level)
}

func (a *app) runGenerateVocab(ctx context.Context, args []string) {
	cmd := flag.NewFlagSet("generate-vocab", flag.ExitOnError)
	stage := cmd.String("stage", "", "Stage id (e.g. stage-7); empty regenerates every stage with cached words")
	cmd.Parse(args)

	stages := models.StageIDs()
	if *stage != "" {
		stages = []string{*stage}
	}

	total := 0
	for _, stageID := range stages {
		count, err := a.bank.GenerateVocabularySets(ctx, stageID)
		if err != nil {
			if *stage != "" {
				log.Fatalf("Generation failed for %s: %v", stageID, err)
			}
			log.Printf("Skipped %s: %v", stageID, err)
			continue
		}
		total += count
	}
	log.Printf("Generated %d dictation questions", total)
}

func (a *app) runRegistrySync(ctx context.Context, args []string, client *registry.Client) {
	cmd := flag.NewFlagSet("registry-sync", flag.ExitOnError)
	stage := cmd.String("stage", "", "Sync a single stage and regenerate its sets; empty syncs all stages")
	cmd.Parse(args)

	if client == nil {
		log.Fatal("No registry configured: set REGISTRY_URL or save it in the system config")
	}

	if *stage != "" {
		count, err := a.bank.SyncStageFromRegistry(ctx, *stage)
		if err != nil {
			log.Fatalf("Registry sync failed for %s: %v", *stage, err)
		}
		log.Printf("Synced %s and generated %d questions", *stage, count)
		return
	}

	count, err := a.bank.SyncMasterRegistry(ctx, func(msg string) { log.Println(msg) })
	if err != nil {
		log.Fatalf("Registry sync failed: %v", err)
	}
	log.Printf("Synced %d words from registry", count)
}

func (a *app) runProvisionUser(ctx context.Context, args []string) {
	cmd := flag.NewFlagSet("provision-user", flag.ExitOnError)
	username := cmd.String("username", "", "Login username (required)")
	name := cmd.String("name", "", "Full name")
	role := cmd.String("role", string(models.RoleStudent), "Role: student, teacher, parent or admin")
	email := cmd.String("email", "", "Email address for credential delivery")
	password := cmd.String("password", "", "Fallback password (required)")
	modules := cmd.String("modules", "", "Comma-separated allowed modules")
	cmd.Parse(args)

	if *username == "" || *password == "" {
		fmt.Println("Error: -username and -password are required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	user := &models.User{
		Username:       *username,
		FullName:       *name,
		Role:           models.UserRole(*role),
		Email:          *email,
		Active:         true,
		AllowedModules: splitModules(*modules),
	}
	if user.FullName == "" {
		user.FullName = *username
	}

	if err := a.users.ProvisionUser(ctx, user, *password); err != nil {
		log.Fatalf("Provisioning failed: %v", err)
	}
	log.Printf("Provisioned user %s (%s)", user.Username, user.ID)
}

func (a *app) runDeleteUser(ctx context.Context, args []string) {
	cmd := flag.NewFlagSet("delete-user", flag.ExitOnError)
	id := cmd.String("id", "", "User id (required)")
	cmd.Parse(args)

	if *id == "" {
		fmt.Println("Error: -id is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	if err := a.users.DeleteUser(ctx, *id); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	log.Printf("Deleted user %s", *id)
}

func (a *app) runListUsers() {
	users, err := a.users.GetUsers()
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	for _, u := range users {
		active := "active"
		if !u.Active {
			active = "inactive"
		}
		fmt.Printf("%s  %-20s %-10s %s\n", u.ID, u.Username, u.Role, active)
	}
	log.Printf("%d users cached", len(users))
}

func (a *app) runListResults(args []string) {
	cmd := flag.NewFlagSet("list-results", flag.ExitOnError)
	userID := cmd.String("user", "", "Limit to a single user id")
	cmd.Parse(args)

	results, err := a.results.GetResults(*userID)
	if err != nil {
		log.Fatalf("Failed to list results: %v", err)
	}
	for _, r := range results {
		fmt.Printf("%s  %-12s %-12s set %-4s %3d/%-3d  %s\n",
			r.ID, r.UserID, r.Level, r.TestID,
			r.CorrectAnswers, r.TotalQuestions, r.CreatedAt.Format(time.RFC3339))
	}
	log.Printf("%d results cached", len(results))
}

func (a *app) runExport(args []string) {
	cmd := flag.NewFlagSet("export", flag.ExitOnError)
	output := cmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	cmd.Parse(args)

	outputPath := *output
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	if err := a.backup.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
}

func (a *app) runImport(args []string) {
	cmd := flag.NewFlagSet("import", flag.ExitOnError)
	input := cmd.String("input", "", "Input file path (required)")
	cmd.Parse(args)

	if *input == "" {
		fmt.Println("Error: -input flag is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*input); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", *input)
	}

	if err := a.backup.Import(*input); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

func splitModules(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func printUsage() {
	fmt.Println("Curious Minds admin console")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  admin sync [-force]                          Pull question banks from the remote store")
	fmt.Println("  admin generate-math -level L -bases 2,5,10   Generate numeric drill sets for a level")
	fmt.Println("  admin generate-vocab [-stage stage-7]        Regenerate dictation sets from cached words")
	fmt.Println("  admin registry-sync [-stage stage-7]         Refresh registry words (and sets, per stage)")
	fmt.Println("  admin provision-user -username U -password P Provision an account (emails credentials)")
	fmt.Println("  admin delete-user -id ID                     Delete an account locally and remotely")
	fmt.Println("  admin list-users                             List cached accounts")
	fmt.Println("  admin list-results [-user ID]                List cached test results")
	fmt.Println("  admin export [-output file]                  Export the local cache to JSON")
	fmt.Println("  admin import -input file                     Import a JSON backup into the local cache")
}
