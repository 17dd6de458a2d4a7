// ABOUTME: Entry point for the calsync CLI
// ABOUTME: Routes auth, sync, and task subcommands and opens the database
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/synapse-app/calsync/cli"
	"github.com/synapse-app/calsync/db"
)

const version = "0.1.0"

func main() {
	// Optional .env for GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET / CALSYNC_*
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: XDG data dir)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("calsync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "auth":
		if err := runAuthCommand(commandArgs); err != nil {
			log.Fatalf("Auth failed: %v", err)
		}

	case "sync":
		database := openDatabase(*dbPath)
		defer database.Close()
		if err := runSyncCommand(database, commandArgs); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}

	case "task":
		database := openDatabase(*dbPath)
		defer database.Close()
		if err := runTaskCommand(database, commandArgs); err != nil {
			log.Fatalf("Task command failed: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runAuthCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: calsync auth <init|status>")
	}
	switch args[0] {
	case "init":
		return cli.AuthInitCommand(args[1:])
	case "status":
		return cli.AuthStatusCommand(args[1:])
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func runSyncCommand(database *sql.DB, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: calsync sync <push|import|status>")
	}
	switch args[0] {
	case "push":
		return cli.SyncPushCommand(database, args[1:])
	case "import":
		return cli.SyncImportCommand(database, args[1:])
	case "status":
		return cli.SyncStatusCommand(database, args[1:])
	default:
		return fmt.Errorf("unknown sync command: %s", args[0])
	}
}

func runTaskCommand(database *sql.DB, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: calsync task <add|list|done>")
	}
	switch args[0] {
	case "add":
		return cli.TaskAddCommand(database, args[1:])
	case "list":
		return cli.TaskListCommand(database, args[1:])
	case "done":
		return cli.TaskDoneCommand(database, args[1:])
	default:
		return fmt.Errorf("unknown task command: %s", args[0])
	}
}

func openDatabase(dbPath string) *sql.DB {
	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return database
}

func printUsage() {
	fmt.Println("calsync - sync Synapse tasks with Google Calendar")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  calsync auth init           Set up Google OAuth")
	fmt.Println("  calsync auth status         Show auth status")
	fmt.Println("  calsync sync push           Push eligible tasks to the calendar")
	fmt.Println("  calsync sync import [-days N]  Import calendar events as tasks")
	fmt.Println("  calsync sync status         Show sync state")
	fmt.Println("  calsync task add <title>    Create a task")
	fmt.Println("  calsync task list           List tasks")
	fmt.Println("  calsync task done <id>      Complete a task")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -db-path <path>   Database location")
	fmt.Println("  -version          Show version")
}
