package corpus

import "strings"

// chunk is an intermediate text segment produced while splitting a file.
type chunk struct {
	text    string
	heading string // nearest preceding markdown heading path, if any
}

// splitText splits content into rune-based sliding windows of chunkSize
// with chunkOverlap runes of overlap. Markdown headings are tracked so
// each chunk carries the heading path it falls under.
func splitText(content string, chunkSize, chunkOverlap int) []chunk {
	if content == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}

	sections := splitByHeadings(content)

	var chunks []chunk
	for _, sec := range sections {
		runes := []rune(sec.text)
		step := chunkSize - chunkOverlap
		for start := 0; start < len(runes); start += step {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			text := strings.TrimSpace(string(runes[start:end]))
			if text != "" {
				chunks = append(chunks, chunk{text: text, heading: sec.heading})
			}
			if end == len(runes) {
				break
			}
		}
	}
	return chunks
}

type section struct {
	heading string
	text    string
}

// splitByHeadings groups content under its markdown headings. Content
// before the first heading forms a section with an empty heading path.
func splitByHeadings(content string) []section {
	lines := strings.Split(content, "\n")

	var sections []section
	var buf []string
	// heading path by level: h[0]=H1, h[1]=H2, h[2]=H3
	var h [3]string
	current := ""

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			sections = append(sections, section{heading: current, text: text})
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		level, title := headingOf(line)
		if level == 0 {
			buf = append(buf, line)
			continue
		}
		flush()
		h[level-1] = title
		for i := level; i < len(h); i++ {
			h[i] = ""
		}
		parts := make([]string, 0, 3)
		for _, p := range h {
			if p != "" {
				parts = append(parts, p)
			}
		}
		current = strings.Join(parts, " > ")
	}
	flush()

	return sections
}

// headingOf returns the markdown heading level (1-3) and title of a
// line, or 0 when the line is not a heading.
func headingOf(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 3 || level >= len(trimmed) || trimmed[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(trimmed[level:])
}
