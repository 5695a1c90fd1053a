package logstore

import "bytes"

// span is the byte range of one non-empty line, excluding the line
// terminator.
type span struct {
	start int64
	end   int64
}

// lineIndex stores byte spans for every non-empty line in a file.
// Blank lines carry no information and are dropped at index time, so
// line numbers everywhere in the system address the sequence of
// non-empty lines.
type lineIndex struct {
	spans []span
	file  *mappedFile
}

// buildLineIndex scans the file in 64KB chunks and records the span
// of every non-empty line.
func buildLineIndex(file *mappedFile) (*lineIndex, error) {
	size := file.Size()
	idx := &lineIndex{file: file}
	if size == 0 {
		return idx, nil
	}

	// Estimate initial capacity (assume ~100 bytes per line).
	idx.spans = make([]span, 0, int(size/100)+1)

	const chunkSize = 64 * 1024
	buf := make([]byte, chunkSize)

	var pos int64
	var lineStart int64
	var carryLast byte
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return nil, err
		}

		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			nl := pos + int64(offset) + int64(i)
			prev := carryLast
			if offset+i > 0 {
				prev = chunk[offset+i-1]
			}
			idx.appendLine(lineStart, nl, prev)
			lineStart = nl + 1
			offset += i + 1
		}

		carryLast = chunk[n-1]
		pos += int64(n)
	}

	// Final line without a trailing newline.
	if lineStart < size {
		idx.appendLine(lineStart, size, carryLast)
	}
	return idx, nil
}

// appendLine records [start, end) as a line span unless the line is
// blank. last is the byte immediately before end, used to detect a
// bare "\r" line without another read.
func (idx *lineIndex) appendLine(start, end int64, last byte) {
	length := end - start
	if length == 0 {
		return
	}
	if length == 1 && last == '\r' {
		return
	}
	if last == '\r' {
		end--
	}
	idx.spans = append(idx.spans, span{start: start, end: end})
}

// LineCount returns the number of non-empty lines.
func (idx *lineIndex) LineCount() int {
	return len(idx.spans)
}

// Line returns the content of the line at the given index (0-based),
// without its terminator.
func (idx *lineIndex) Line(lineNum int) ([]byte, error) {
	if lineNum < 0 || lineNum >= len(idx.spans) {
		return nil, nil
	}
	s := idx.spans[lineNum]
	return idx.file.ReadRange(s.start, s.end)
}
