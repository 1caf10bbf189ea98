package prefs

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_GetSet(t *testing.T) {
	s := openTestStore(t)

	if got := s.Get("voice", "default"); got != "default" {
		t.Errorf("Get unset = %q, want fallback", got)
	}

	if err := s.Set("voice", "emma"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("voice", "default"); got != "emma" {
		t.Errorf("Get = %q, want emma", got)
	}

	// Overwrite
	if err := s.Set("voice", "liam"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("voice", ""); got != "liam" {
		t.Errorf("Get after overwrite = %q, want liam", got)
	}
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if got := s.Get("k", "gone"); got != "gone" {
		t.Errorf("Get after delete = %q", got)
	}

	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestStore_All(t *testing.T) {
	s := openTestStore(t)

	if err := s.Set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", "2"); err != nil {
		t.Fatal(err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Errorf("All = %v", all)
	}
}

func TestStore_SkillEnabled(t *testing.T) {
	s := openTestStore(t)

	if _, ok := s.SkillEnabled("WebSkill"); ok {
		t.Error("unset skill pref reported as present")
	}

	if err := s.SetSkillEnabled("WebSkill", false); err != nil {
		t.Fatal(err)
	}
	enabled, ok := s.SkillEnabled("WebSkill")
	if !ok || enabled {
		t.Errorf("SkillEnabled = (%v, %v), want (false, true)", enabled, ok)
	}

	if err := s.SetSkillEnabled("WebSkill", true); err != nil {
		t.Fatal(err)
	}
	enabled, ok = s.SkillEnabled("WebSkill")
	if !ok || !enabled {
		t.Errorf("SkillEnabled = (%v, %v), want (true, true)", enabled, ok)
	}
}

func TestSkillEnabledKey(t *testing.T) {
	if got := SkillEnabledKey("ClockSkill"); got != "skill_clockskill_enabled" {
		t.Errorf("SkillEnabledKey = %q", got)
	}
}

func TestStore_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("persist", "yes"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if got := s2.Get("persist", ""); got != "yes" {
		t.Errorf("Get after reopen = %q, want yes", got)
	}
}
