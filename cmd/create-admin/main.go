package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/database"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/logger"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/repository"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	authService := service.NewAuthService(cfg, nil)
	adminService := service.NewAdminService(repository.NewAdminRepository(pool), authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	codes := model.AllPermissionCodes()
	fmt.Printf("Permissions, comma separated (default all: %s): ", strings.Join(codes, ","))
	raw, _ := reader.ReadString('\n')
	permissions := parsePermissions(raw, codes)

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := adminService.Create(ctx, name, email, password, permissions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.Name, admin.Email, admin.ID)
	fmt.Printf("Permissions: %s\n", strings.Join(admin.Permissions, ", "))
}

// parsePermissions splits the prompt answer. A blank answer grants everything.
func parsePermissions(raw string, all []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return all
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
