package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dharmapatha/portal/internal/auth"
	"github.com/dharmapatha/portal/internal/model"
	"github.com/dharmapatha/portal/internal/store"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer db.Close()

	if err := seedAdmin(ctx, db, "", ""); err != nil {
		t.Fatalf("seed without email: %v", err)
	}
	if n, _ := db.CountRole(ctx, model.RoleAdmin); n != 0 {
		t.Fatalf("expected no admin, got %d", n)
	}

	if err := seedAdmin(ctx, db, "admin@example.com", ""); err == nil {
		t.Fatal("expected error for new admin without password")
	}

	if err := seedAdmin(ctx, db, " Admin@Example.com ", "rahasia123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	u, err := db.GetUserByEmail(ctx, "admin@example.com")
	if err != nil || u == nil {
		t.Fatalf("admin user missing: %v", err)
	}
	if !auth.CheckPassword(u.PasswordHash, "rahasia123") {
		t.Error("admin password not stored")
	}
	if ok, _ := db.HasRole(ctx, u.ID, model.RoleAdmin); !ok {
		t.Error("seeded user should be admin")
	}

	// A second run is a no-op.
	if err := seedAdmin(ctx, db, "other@example.com", "rahasia123"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if other, _ := db.GetUserByEmail(ctx, "other@example.com"); other != nil {
		t.Error("seed must not create users once an admin exists")
	}
}

func TestSeedAdminPromotesExistingUser(t *testing.T) {
	ctx := context.Background()
	db, err := store.New(store.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer db.Close()

	hash, _ := auth.HashPassword("rahasia123")
	u, err := db.CreateUser(ctx, model.User{Email: "rina@example.com", PasswordHash: hash}, "Rina")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := seedAdmin(ctx, db, "rina@example.com", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, _ := db.HasRole(ctx, u.ID, model.RoleAdmin); !ok {
		t.Error("existing user should be promoted")
	}
}

func TestGrantAdminAndExportCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "portal.db")
	ctx := context.Background()

	db, err := store.New(store.DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	hash, _ := auth.HashPassword("rahasia123")
	u, err := db.CreateUser(ctx, model.User{Email: "rina@example.com", PasswordHash: hash}, "Rina")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := db.InsertAssessment(ctx, model.AssessmentRecord{
		UserID: &u.ID, Email: u.Email, AssessmentType: model.AssessmentFreshGraduate,
		Answers: map[string]int{"q1": 4}, Score: 80, Recommendations: "ok",
	}); err != nil {
		t.Fatalf("InsertAssessment: %v", err)
	}
	db.Close()

	run := func(args ...string) error {
		cmd := rootCmd()
		cmd.SetArgs(append(args, "--db", dbPath, "--env-file", ""))
		return cmd.Execute()
	}

	if err := run("grant-admin", "--email", "nobody@example.com"); err == nil {
		t.Error("expected error for unknown email")
	}
	if err := run("grant-admin", "--email", "RINA@example.com"); err != nil {
		t.Fatalf("grant-admin: %v", err)
	}

	out := filepath.Join(dir, "export.json")
	if err := run("export", "-o", out); err != nil {
		t.Fatalf("export: %v", err)
	}

	db, err = store.New(store.DriverSQLite, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if ok, _ := db.HasRole(ctx, u.ID, model.RoleAdmin); !ok {
		t.Error("grant-admin should grant the admin role")
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var export model.AssessmentExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.Total != 1 || len(export.Results) != 1 {
		t.Fatalf("expected one exported result, got %+v", export)
	}
	if export.Results[0].FullName != "Rina" {
		t.Errorf("expected profile name in export, got %q", export.Results[0].FullName)
	}
	if export.Statistics.Total != 1 || len(export.Statistics.ScoreDistribution) != 5 {
		t.Errorf("unexpected statistics %+v", export.Statistics)
	}
}
