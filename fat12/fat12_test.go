package fat12_test

import (
	"testing"

	"github.com/msiedlarek/fluxfat/fat12"
	"github.com/msiedlarek/fluxfat/fatimage"
	"github.com/msiedlarek/fluxfat/ferr"
)

func formatted(t *testing.T) *fatimage.Image {
	t.Helper()
	img := fatimage.New()
	if err := fat12.Format(img, "TESTVOL", fat12.FormatQuick, 0x12345678); err != nil {
		t.Fatalf("Format: %v", err)
	}
	return img
}

func TestMountAfterFormat(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if v.BPB.TotalSectors != 2880 {
		t.Errorf("TotalSectors = %d, want 2880", v.BPB.TotalSectors)
	}
	if v.BPB.NumFATs != 2 {
		t.Errorf("NumFATs = %d, want 2", v.BPB.NumFATs)
	}
}

func TestIdempotentFormat(t *testing.T) {
	img := formatted(t)

	v1, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount 1: %v", err)
	}
	if err := fat12.Format(img, "TESTVOL", fat12.FormatQuick, 0x12345678); err != nil {
		t.Fatalf("re-Format: %v", err)
	}
	v2, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount 2: %v", err)
	}
	if *v1.BPB != *v2.BPB {
		t.Errorf("BPBs differ after re-formatting: %+v vs %+v", v1.BPB, v2.BPB)
	}
}

func TestWriteReadDeleteRoundTrip(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	content := []byte("Hello from floppy!\nLine 2.\n")

	w, err := v.OpenWrite("TEST.TXT")
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v2, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("re-mount: %v", err)
	}

	e, err := v2.Stat("TEST.TXT")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if int(e.Size) != len(content) {
		t.Errorf("Size = %d, want %d", e.Size, len(content))
	}

	r, err := v2.Open("TEST.TXT")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("content = %q, want %q", got, content)
	}

	if err := v2.Delete("TEST.TXT"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	v3, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("re-mount after delete: %v", err)
	}
	if _, err := v3.Stat("TEST.TXT"); !ferr.Is(err, ferr.NotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestListSkipsVolumeLabel(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	entries, err := v.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty freshly-formatted volume, got %d entries", len(entries))
	}
}

func TestWriteSpanningMultipleClusters(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	content := make([]byte, 3000) // spans several 512-byte clusters
	for i := range content {
		content[i] = byte(i % 251)
	}

	w, err := v.OpenWrite("BIG.BIN")
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v2, _ := fat12.Mount(img)
	r, err := v2.Open("BIG.BIN")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(content) {
		t.Fatalf("got %d bytes, want %d", len(got), len(content))
	}
	for i := range content {
		if got[i] != content[i] {
			t.Fatalf("byte %d = %x, want %x", i, got[i], content[i])
		}
	}
}

func TestOverwriteExistingFile(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	w1, _ := v.OpenWrite("A.TXT")
	w1.Write([]byte("first version"))
	if err := w1.Close(); err != nil {
		t.Fatalf("Close 1: %v", err)
	}

	w2, err := v.OpenWrite("A.TXT")
	if err != nil {
		t.Fatalf("OpenWrite 2: %v", err)
	}
	w2.Write([]byte("second"))
	if err := w2.Close(); err != nil {
		t.Fatalf("Close 2: %v", err)
	}

	e, err := v.Stat("A.TXT")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if int(e.Size) != len("second") {
		t.Fatalf("Size = %d, want %d", e.Size, len("second"))
	}
}

func TestOpenWriteRejectsReentrant(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	w1, err := v.OpenWrite("A.TXT")
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if _, err := v.OpenWrite("B.TXT"); err == nil {
		t.Fatalf("expected reentrant OpenWrite to fail")
	}
	w1.Write([]byte("x"))
	if err := w1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLBACHSRoundTrip(t *testing.T) {
	img := formatted(t)
	v, err := fat12.Mount(img)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	for lba := 0; lba < 2880; lba += 37 {
		cyl, head, sec := v.BPB.LBAToCHS(lba)
		back := v.BPB.CHSToLBA(cyl, head, sec)
		if back != lba {
			t.Errorf("LBA %d -> CHS(%d,%d,%d) -> LBA %d, want %d", lba, cyl, head, sec, back, lba)
		}
	}
}
