package mcpserver

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

// readLines returns the requested line ranges prefixed with line numbers.
// Overlapping ranges are merged; a range end of -1 means end of file.
func readLines(file string, lines [][]int) (string, error) {
	validLines := [][]int{}
	for _, line := range lines {
		if len(line) != 2 {
			continue
		}
		if line[1] == -1 {
			line = []int{line[0], math.MaxInt32}
		}
		if line[0] >= 1 && line[0] <= line[1] {
			validLines = append(validLines, line)
		}
	}
	if len(validLines) == 0 {
		return "", fmt.Errorf("no valid line ranges requested")
	}
	sort.Slice(validLines, func(i, j int) bool {
		return validLines[i][0] < validLines[j][0]
	})
	mergeLines := [][]int{}
	for idx := 0; idx < len(validLines); {
		start := validLines[idx][0]
		end := validLines[idx][1]
		for idx < len(validLines) && validLines[idx][0] <= end {
			end = max(end, validLines[idx][1])
			idx++
		}
		mergeLines = append(mergeLines, []int{start, end})
	}

	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var builder strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	idx := 0
	currentLine := 1

	for scanner.Scan() {
		if currentLine >= mergeLines[idx][0] && currentLine <= mergeLines[idx][1] {
			builder.WriteString(fmt.Sprintf("%d|%s\n", currentLine, scanner.Text()))
		}
		if currentLine == mergeLines[idx][1] {
			idx++
			if idx >= len(mergeLines) {
				break
			}
		}
		currentLine++
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func listEntries(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for _, entry := range entries {
		if entry.IsDir() {
			builder.WriteString(entry.Name() + "/\n")
		} else {
			builder.WriteString(entry.Name() + "\n")
		}
	}
	return builder.String(), nil
}
