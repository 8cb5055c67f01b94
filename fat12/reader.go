package fat12

import "github.com/msiedlarek/fluxfat/ferr"

// FileReader reads a file's cluster chain sequentially.
type FileReader struct {
	v              *Volume
	size           int
	bytesRead      int
	currentCluster int
	clusterBuf     []byte
	clusterOffset  int
}

// Open validates filename names a regular (non-directory) file and
// returns a reader positioned at its first byte.
func (v *Volume) Open(filename string) (*FileReader, error) {
	e, err := v.Stat(filename)
	if err != nil {
		return nil, err
	}
	if e.IsDir() {
		return nil, ferr.Invalidf("fat12: %q is a directory", filename)
	}

	r := &FileReader{v: v, size: int(e.Size), currentCluster: int(e.StartCluster)}
	if r.size > 0 && r.currentCluster >= clusterMin {
		buf, err := v.readCluster(r.currentCluster)
		if err != nil {
			return nil, err
		}
		r.clusterBuf = buf
	}
	return r, nil
}

// Read fills p and returns the number of bytes read, advancing the
// cluster chain as needed. The call that reaches the file size returns its
// bytes with a nil error; once bytesRead has reached the size, further
// calls return (0, ferr EOF).
func (r *FileReader) Read(p []byte) (int, error) {
	if r.bytesRead >= r.size {
		return 0, ferr.New(ferr.EOF, "fat12: past end of file")
	}

	total := 0
	for total < len(p) && r.bytesRead < r.size {
		if r.clusterOffset >= len(r.clusterBuf) {
			next, err := r.v.fatEntry(r.currentCluster)
			if err != nil {
				return total, err
			}
			if next >= clusterEOC || next < clusterMin {
				return total, ferr.New(ferr.EOF, "fat12: unexpected end of chain")
			}
			r.currentCluster = next
			buf, err := r.v.readCluster(r.currentCluster)
			if err != nil {
				return total, err
			}
			r.clusterBuf = buf
			r.clusterOffset = 0
		}

		remaining := r.size - r.bytesRead
		avail := len(r.clusterBuf) - r.clusterOffset
		want := len(p) - total
		n := min3(avail, want, remaining)

		copy(p[total:total+n], r.clusterBuf[r.clusterOffset:r.clusterOffset+n])
		total += n
		r.clusterOffset += n
		r.bytesRead += n
	}
	return total, nil
}

// ReadAll reads the remainder of the file into one buffer.
func (r *FileReader) ReadAll() ([]byte, error) {
	out := make([]byte, 0, r.size-r.bytesRead)
	buf := make([]byte, 512)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			if ferr.Is(err, ferr.EOF) {
				return out, nil
			}
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
