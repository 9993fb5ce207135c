package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"testing"

	"github.com/starford/txtshelf/internal/apperr"
)

func tempShelf(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func mustCreate(t *testing.T, s *FS, name, content string) {
	t.Helper()
	if err := s.Create(name, []byte(content)); err != nil {
		t.Fatalf("Create(%q): %v", name, err)
	}
}

func TestCreateAndRead(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "hello")
	got, err := s.Read("a.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q, want %q", got, "hello")
	}
}

func TestCreateEmptyContent(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "empty.txt", "")
	got, err := s.Read("empty.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("content = %q, want empty", got)
	}
}

func TestCreateTwiceFails(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "first")
	err := s.Create("a.txt", []byte("second"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("second Create = %v, want ErrAlreadyExists", err)
	}
	got, _ := s.Read("a.txt")
	if string(got) != "first" {
		t.Errorf("content overwritten: %q", got)
	}
}

func TestCreateLeavesNoTempFiles(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "x")
	_ = s.Create("a.txt", []byte("y"))

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".txtshelf-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestCreateMakesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Data")
	s, err := NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	mustCreate(t, s, "first.txt", "1")
	if _, err := os.Stat(filepath.Join(root, "first.txt")); err != nil {
		t.Errorf("file not on disk: %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "bye")
	if err := s.Delete("a.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("a.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Read after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete("a.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteDirectoryNamedLikeFile(t *testing.T) {
	s := tempShelf(t)
	if err := os.Mkdir(filepath.Join(s.Root(), "dir.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("dir.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete(dir) = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "X")
	if err := s.Rename("a.txt", "b.txt"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := s.Read("a.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
	got, err := s.Read("b.txt")
	if err != nil {
		t.Fatalf("Read new name: %v", err)
	}
	if string(got) != "X" {
		t.Errorf("content = %q, want X", got)
	}
}

func TestRenameOntoExisting(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "A")
	mustCreate(t, s, "b.txt", "B")

	err := s.Rename("a.txt", "b.txt")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("Rename = %v, want ErrAlreadyExists", err)
	}
	for name, want := range map[string]string{"a.txt": "A", "b.txt": "B"} {
		got, err := s.Read(name)
		if err != nil {
			t.Fatalf("Read(%q): %v", name, err)
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRenameOntoSelf(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "A")
	if err := s.Rename("a.txt", "a.txt"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("Rename onto self = %v, want ErrAlreadyExists", err)
	}
	if got, _ := s.Read("a.txt"); string(got) != "A" {
		t.Errorf("content = %q, want A", got)
	}
}

func TestRenameMissing(t *testing.T) {
	s := tempShelf(t)
	if err := s.Rename("ghost.txt", "b.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Rename missing = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "a")
	mustCreate(t, s, "b.txt", "b")
	if err := os.WriteFile(filepath.Join(s.Root(), "c.log"), []byte("not txt"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.Root(), "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Errorf("List = %v, want [a.txt b.txt]", names)
	}
}

func TestListMissingRoot(t *testing.T) {
	s, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("List = %#v, want empty non-nil slice", names)
	}
}

func TestStat(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "hello")
	info, err := s.Stat("a.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Name != "a.txt" || info.Size != 5 || info.Checksum == "" || info.UpdatedAt.IsZero() {
		t.Errorf("Stat = %+v", info)
	}
	if _, err := s.Stat("nope.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Stat missing = %v, want ErrNotFound", err)
	}
}

func TestLoad(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "hello")
	f, err := s.Load("a.txt")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	info, _ := s.Stat("a.txt")
	if f.Content != "hello" || f.Size != 5 || f.Checksum != info.Checksum {
		t.Errorf("Load = %+v, Stat = %+v", f, info)
	}
	if _, err := s.Load("nope.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Load missing = %v, want ErrNotFound", err)
	}
}

func TestSymlinkNotAStoredFile(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "inside")
	outside := filepath.Join(t.TempDir(), "target.txt")
	if err := os.WriteFile(outside, []byte("outside"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(s.Root(), "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "a.txt" {
		t.Errorf("List = %v, want [a.txt]", names)
	}
	if _, err := s.Stat("link.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Stat = %v, want ErrNotFound", err)
	}
	if data, err := s.Read("link.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Read = %q, %v; want ErrNotFound", data, err)
	}
	if _, err := s.Load("link.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Load = %v, want ErrNotFound", err)
	}
	if st, err := s.Open("link.txt"); !errors.Is(err, apperr.ErrNotFound) {
		if st != nil {
			st.Close()
		}
		t.Errorf("Open = %v, want ErrNotFound", err)
	}
	if err := s.Delete("link.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
	if err := s.Rename("link.txt", "moved.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Rename = %v, want ErrNotFound", err)
	}
	if data, _ := os.ReadFile(outside); string(data) != "outside" {
		t.Errorf("target changed: %q", data)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	s := tempShelf(t)
	const n = 32

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create("r.txt", []byte(fmt.Sprintf("writer %d", i)))
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		switch {
		case err == nil:
			if winner >= 0 {
				t.Fatalf("writers %d and %d both created r.txt", winner, i)
			}
			winner = i
		case !errors.Is(err, apperr.ErrAlreadyExists):
			t.Errorf("writer %d: %v, want ErrAlreadyExists", i, err)
		}
	}
	if winner < 0 {
		t.Fatal("no writer succeeded")
	}
	got, err := s.Read("r.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != fmt.Sprintf("writer %d", winner) {
		t.Errorf("content = %q, want writer %d", got, winner)
	}
	entries, _ := os.ReadDir(s.Root())
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestConcurrentRenameSingleWinner(t *testing.T) {
	s := tempShelf(t)
	const n = 16
	for i := 0; i < n; i++ {
		mustCreate(t, s, fmt.Sprintf("o%d.txt", i), fmt.Sprintf("source %d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Rename(fmt.Sprintf("o%d.txt", i), "dst.txt")
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		switch {
		case err == nil:
			if winner >= 0 {
				t.Fatalf("renames %d and %d both landed on dst.txt", winner, i)
			}
			winner = i
		case !errors.Is(err, apperr.ErrAlreadyExists):
			t.Errorf("rename %d: %v, want ErrAlreadyExists", i, err)
		}
	}
	if winner < 0 {
		t.Fatal("no rename succeeded")
	}
	got, err := s.Read("dst.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != fmt.Sprintf("source %d", winner) {
		t.Errorf("dst.txt = %q, want source %d", got, winner)
	}
	names, _ := s.List()
	if len(names) != n {
		t.Errorf("List has %d files, want %d (losers keep their name)", len(names), n)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempShelf(t)
	outside := filepath.Join(filepath.Dir(s.Root()), "outside.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []string{
		"../outside.txt",
		"../../etc/passwd",
		"/etc/passwd",
		"sub/a.txt",
		"a",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Read(%q) = %v, want ErrNotFound", p, err)
		}
		if err := s.Delete(p); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Delete(%q) = %v, want ErrNotFound", p, err)
		}
		if _, err := s.Open(p); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Open(%q) = %v, want ErrNotFound", p, err)
		}
		if err := s.Create(p, []byte("x")); err == nil {
			t.Errorf("Create(%q) should fail", p)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside root was touched: %v", err)
	}
}

func TestOpenStreamsAndCloses(t *testing.T) {
	s := tempShelf(t)
	mustCreate(t, s, "a.txt", "streamed content")

	st, err := s.Open("a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.Size != int64(len("streamed content")) {
		t.Errorf("Size = %d", st.Size)
	}
	data, err := io.ReadAll(st)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "streamed content" {
		t.Errorf("data = %q", data)
	}
	if !st.Closed() {
		t.Error("stream should close itself at EOF")
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close after EOF: %v", err)
	}
	if n, err := st.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("Read after close = %d, %v; want 0, EOF", n, err)
	}
}

func TestOpenMissing(t *testing.T) {
	s := tempShelf(t)
	if _, err := s.Open("nope.txt"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Open missing = %v, want ErrNotFound", err)
	}
}

func TestReadPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	s := tempShelf(t)
	mustCreate(t, s, "locked.txt", "x")
	if err := os.Chmod(filepath.Join(s.Root(), "locked.txt"), 0o000); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("locked.txt"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("Read = %v, want ErrAccessDenied", err)
	}
}

func TestClassify(t *testing.T) {
	pathErr := func(errno syscall.Errno) error {
		return &fs.PathError{Op: "open", Path: "x", Err: errno}
	}
	cases := []struct {
		in   error
		want error
	}{
		{pathErr(syscall.ENOENT), apperr.ErrNotFound},
		{pathErr(syscall.ENOTDIR), apperr.ErrNotFound},
		{pathErr(syscall.EEXIST), apperr.ErrAlreadyExists},
		{pathErr(syscall.EACCES), apperr.ErrAccessDenied},
		{pathErr(syscall.EPERM), apperr.ErrAccessDenied},
		{pathErr(syscall.EIO), apperr.ErrInternal},
		{errors.New("boom"), apperr.ErrInternal},
	}
	for _, c := range cases {
		if got := classify(c.in); got != c.want {
			t.Errorf("classify(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	s := tempShelf(t)
	_, err := s.Read("missing.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected OS cause in chain: %v", err)
	}
	var serr *Error
	if !errors.As(err, &serr) || serr.Op != "read" || serr.Name != "missing.txt" {
		t.Errorf("unexpected error shape: %#v", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "txtshelf-test-*")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
