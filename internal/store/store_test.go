package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dharmapatha/portal/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email, name string) model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.User{Email: email, PasswordHash: "hash"}, name)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		in     string
		want   string
	}{
		{DriverSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{DriverPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.driver+" "+tt.in, func(t *testing.T) {
			s := &Store{driver: tt.driver}
			if got := s.rebind(tt.in); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN(":memory:"); got != ":memory:?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)" {
		t.Errorf("unexpected memory dsn %q", got)
	}
	if got := sqliteDSN("file.db?cache=shared"); got != "file.db?cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)" {
		t.Errorf("unexpected file dsn %q", got)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := New("mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSchemaVersion(t *testing.T) {
	s := newTestStore(t)
	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != schemaVersion {
		t.Errorf("expected schema version %q, got %q", schemaVersion, v)
	}
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, s, "  Rina@Example.com ", "Rina")
	if u.ID == "" {
		t.Fatal("expected an assigned ID")
	}
	if u.Email != "rina@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}

	got, err := s.GetUserByEmail(ctx, "RINA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("expected user %s, got %+v", u.ID, got)
	}

	missing, err := s.GetUserByID(ctx, "nope")
	if err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}

	_, err = s.CreateUser(ctx, model.User{Email: "rina@example.com", PasswordHash: "x"}, "Other")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	p, err := s.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p == nil || p.FullName != "Rina" {
		t.Errorf("expected profile name Rina, got %+v", p)
	}

	if err := s.UpsertProfile(ctx, model.Profile{UserID: u.ID, FullName: "Rina S.", AvatarURL: "a.png"}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	p, _ = s.GetProfile(ctx, u.ID)
	if p.FullName != "Rina S." || p.AvatarURL != "a.png" {
		t.Errorf("profile not updated: %+v", p)
	}

	n, err := s.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestRoles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "admin@example.com", "Admin")

	roles, err := s.ListRoles(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	if len(roles) != 1 || roles[0] != model.RoleMember {
		t.Fatalf("expected [member], got %v", roles)
	}

	ok, err := s.HasRole(ctx, u.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if ok {
		t.Error("new user should not be admin")
	}

	// Granting twice is a no-op.
	for range 2 {
		if err := s.GrantRole(ctx, u.ID, model.RoleAdmin); err != nil {
			t.Fatalf("GrantRole: %v", err)
		}
	}
	if ok, _ := s.HasRole(ctx, u.ID, model.RoleAdmin); !ok {
		t.Error("expected admin role after grant")
	}
	if n, _ := s.CountRole(ctx, model.RoleAdmin); n != 1 {
		t.Errorf("expected 1 admin, got %d", n)
	}

	if err := s.RevokeRole(ctx, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}
	if ok, _ := s.HasRole(ctx, u.ID, model.RoleAdmin); ok {
		t.Error("expected admin role revoked")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "a@example.com", "A")

	token, err := s.CreateAuthSession(ctx, u.ID)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("expected 64-char token, got %d", len(token))
	}

	sess, err := s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != u.ID {
		t.Fatalf("expected session for %s, got %+v", u.ID, sess)
	}

	// Expire the session by hand.
	if _, err := s.exec(ctx, `UPDATE auth_sessions SET expires_at = ? WHERE id = ?`,
		"2000-01-01T00:00:00.000000Z", token); err != nil {
		t.Fatalf("expire session: %v", err)
	}
	sess, err = s.GetAuthSession(ctx, token)
	if err != nil {
		t.Fatalf("GetAuthSession expired: %v", err)
	}
	if sess != nil {
		t.Error("expected nil for expired session")
	}

	other, _ := s.CreateAuthSession(ctx, u.ID)
	if err := s.DeleteAuthSession(ctx, other); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	if sess, _ := s.GetAuthSession(ctx, other); sess != nil {
		t.Error("expected nil after delete")
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "a@example.com", "A")

	live, _ := s.CreateAuthSession(ctx, u.ID)
	stale, _ := s.CreateAuthSession(ctx, u.ID)
	if _, err := s.exec(ctx, `UPDATE auth_sessions SET expires_at = ? WHERE id = ?`,
		"2000-01-01T00:00:00.000000Z", stale); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	n, err := s.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if sess, _ := s.GetAuthSession(ctx, live); sess == nil {
		t.Error("live session should survive cleanup")
	}
}

func TestAssessments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "member@example.com", "Member")

	list, err := s.ListAssessments(ctx)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	anon, err := s.InsertAssessment(ctx, model.AssessmentRecord{
		Email:           "guest@example.com",
		AssessmentType:  model.AssessmentFreshGraduate,
		Answers:         map[string]int{"q1": 4, "q2": 3},
		Score:           87.5,
		Recommendations: "Bagus",
	})
	if err != nil {
		t.Fatalf("InsertAssessment anonymous: %v", err)
	}
	if anon.ID == "" || anon.CreatedAt.IsZero() {
		t.Fatalf("expected ID and CreatedAt assigned, got %+v", anon)
	}

	uid := u.ID
	signed, err := s.InsertAssessment(ctx, model.AssessmentRecord{
		UserID:          &uid,
		Email:           u.Email,
		AssessmentType:  model.AssessmentCareerSwitch,
		Answers:         map[string]int{"q1": 1},
		Score:           25,
		Recommendations: "Mulai",
	})
	if err != nil {
		t.Fatalf("InsertAssessment signed in: %v", err)
	}

	list, err = s.ListAssessments(ctx)
	if err != nil {
		t.Fatalf("ListAssessments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(list))
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Error("expected newest first")
	}

	var got model.AssessmentRecord
	for _, rec := range list {
		if rec.ID == anon.ID {
			got = rec
		}
	}
	if got.UserID != nil {
		t.Errorf("expected nil user for anonymous record, got %v", *got.UserID)
	}
	if got.Answers["q1"] != 4 || got.Answers["q2"] != 3 {
		t.Errorf("answers did not round-trip: %v", got.Answers)
	}
	if got.Score != 87.5 || got.Recommendations != "Bagus" {
		t.Errorf("unexpected record %+v", got)
	}

	mine, err := s.ListAssessmentsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAssessmentsByUser: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != signed.ID {
		t.Fatalf("expected only %s, got %+v", signed.ID, mine)
	}
	if mine[0].UserID == nil || *mine[0].UserID != u.ID {
		t.Errorf("expected user id %s on record", u.ID)
	}
}

func TestGuideCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := createTestUser(t, s, "admin@example.com", "Admin")

	g, err := s.CreateGuide(ctx, model.CareerGuide{
		Title:          "Menulis CV",
		Description:    "Langkah demi langkah",
		Category:       model.CategoryTips,
		TargetAudience: model.AssessmentFreshGraduate,
		AuthorID:       author.ID,
	})
	if err != nil {
		t.Fatalf("CreateGuide: %v", err)
	}
	if _, err := s.CreateGuide(ctx, model.CareerGuide{
		Title:          "Pindah Bidang",
		Description:    "Strategi transisi",
		Category:       model.CategoryStrategy,
		TargetAudience: model.AssessmentCareerSwitch,
		AuthorID:       author.ID,
	}); err != nil {
		t.Fatalf("CreateGuide: %v", err)
	}

	got, err := s.GetGuide(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGuide: %v", err)
	}
	if got.Title != "Menulis CV" || got.Category != model.CategoryTips {
		t.Errorf("unexpected guide %+v", got)
	}

	tests := []struct {
		name     string
		audience model.Audience
		want     int
	}{
		{"fresh graduate", model.AssessmentFreshGraduate, 1},
		{"career switch", model.AssessmentCareerSwitch, 1},
		{"unknown", model.Audience("other"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := s.ListGuidesByAudience(ctx, tt.audience)
			if err != nil {
				t.Fatalf("ListGuidesByAudience: %v", err)
			}
			if len(gs) != tt.want {
				t.Errorf("expected %d guides, got %d", tt.want, len(gs))
			}
		})
	}

	got.Title = "Menulis CV yang Baik"
	got.ImagePath = "abc.png"
	if err := s.UpdateGuide(ctx, got); err != nil {
		t.Fatalf("UpdateGuide: %v", err)
	}
	got, _ = s.GetGuide(ctx, g.ID)
	if got.Title != "Menulis CV yang Baik" || got.ImagePath != "abc.png" {
		t.Errorf("guide not updated: %+v", got)
	}

	if err := s.DeleteGuide(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGuide: %v", err)
	}
	if _, err := s.GetGuide(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteGuide(ctx, g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
	if err := s.UpdateGuide(ctx, model.CareerGuide{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing guide, got %v", err)
	}

	all, err := s.ListGuides(ctx)
	if err != nil {
		t.Fatalf("ListGuides: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 guide left, got %d", len(all))
	}
}

func TestExportAssessments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "member@example.com", "Budi")
	uid := u.ID

	if _, err := s.InsertAssessment(ctx, model.AssessmentRecord{
		UserID: &uid, Email: u.Email, AssessmentType: model.AssessmentFreshGraduate,
		Answers: map[string]int{"q1": 4}, Score: 100, Recommendations: "Hebat",
	}); err != nil {
		t.Fatalf("InsertAssessment: %v", err)
	}
	if _, err := s.InsertAssessment(ctx, model.AssessmentRecord{
		Email: "guest@example.com", AssessmentType: model.AssessmentCareerSwitch,
		Answers: map[string]int{"q1": 2}, Score: 50, Recommendations: "Cukup",
	}); err != nil {
		t.Fatalf("InsertAssessment: %v", err)
	}

	results, err := s.ExportAssessments(ctx)
	if err != nil {
		t.Fatalf("ExportAssessments: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	names := map[string]string{}
	for _, r := range results {
		names[r.Email] = r.FullName
	}
	if names["member@example.com"] != "Budi" {
		t.Errorf("expected profile name for signed-in submission, got %q", names["member@example.com"])
	}
	if names["guest@example.com"] != "" {
		t.Errorf("expected empty name for anonymous submission, got %q", names["guest@example.com"])
	}
}
