package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveIfExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	err := WriteAtomic(path, func(partial string) error {
		if partial != path+PartialSuffix {
			t.Fatalf("unexpected partial path %q", partial)
		}
		return os.WriteFile(partial, []byte("new"), 0o644)
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("got %q", got)
	}
	if _, err := os.Stat(path + PartialSuffix); !os.IsNotExist(err) {
		t.Fatal("partial file should not remain")
	}
}

func TestWriteAtomicFailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")

	err := WriteAtomic(path, func(partial string) error {
		if err := os.WriteFile(partial, []byte("half"), 0o644); err != nil {
			t.Fatal(err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("original overwritten: %q", got)
	}
	if _, err := os.Stat(path + PartialSuffix); !os.IsNotExist(err) {
		t.Fatal("partial file should be removed on failure")
	}
}
