package platform

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Downloader output markers
const (
	DownloadLinePrefix = "[download]"
	PercentSign        = "%"
)

// Progress bounds
const (
	MinPercent = 0
	MaxPercent = 100
)

// ParseProgress extracts the integer percentage from a downloader line such as
// "[download]  45.2% of 10MiB". ok is false when the line carries no usable
// percentage, in which case the caller keeps its previous value.
func ParseProgress(line string) (percent int, ok bool) {
	if !strings.HasPrefix(line, DownloadLinePrefix) || !strings.Contains(line, PercentSign) {
		return 0, false
	}

	before, _, _ := strings.Cut(line, PercentSign)
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return 0, false
	}

	value, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	// clamp before converting, int() of an out-of-range float is undefined
	value = math.Max(MinPercent, math.Min(MaxPercent, value))
	return int(value), true
}

// ScanOutputLines is a bufio.SplitFunc that ends a line at "\n", "\r" or
// "\r\n". yt-dlp redraws its progress line with bare carriage returns.
func ScanOutputLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// '\r': need one more byte to tell "\r" from "\r\n"
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
