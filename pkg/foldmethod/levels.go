package foldmethod

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-go/common/types"

	"github.com/macropower/foldsort/pkg/expr"
)

// lineInfo holds the fold level of a line, plus the depths of folds it
// explicitly starts or ends (zero when it does neither).
type lineInfo struct {
	level int
	start int
	end   int
}

type levelKind int

const (
	levelAbsolute levelKind = iota
	levelSame
	levelAdd
	levelSub
	levelStart
	levelEnd
	levelUndefined
)

// rawLevel is an unresolved fold level, as returned by a fold expression.
type rawLevel struct {
	kind levelKind
	n    int
}

// parseLevel parses a vim fold expression result.
func parseLevel(s string) (rawLevel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return rawLevel{}, fmt.Errorf("%w: empty fold level", ErrInvalidExpr)
	}

	if s == "=" {
		return rawLevel{kind: levelSame}, nil
	}

	if s == "-1" {
		return rawLevel{kind: levelUndefined}, nil
	}

	kind := levelAbsolute
	digits := s

	switch s[0] {
	case 'a':
		kind = levelAdd
	case 's':
		kind = levelSub
	case '>':
		kind = levelStart
	case '<':
		kind = levelEnd
	}

	if kind != levelAbsolute {
		digits = s[1:]
	}

	if digits == "" && (kind == levelAdd || kind == levelSub) {
		return rawLevel{kind: kind, n: 1}, nil
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return rawLevel{}, fmt.Errorf("%w: fold level %q", ErrInvalidExpr, s)
	}

	return rawLevel{kind: kind, n: n}, nil
}

// resolve turns raw levels into line infos. Undefined levels take the lower
// of the levels carried out of the previous defined line and into the next.
func resolve(raws []rawLevel) []lineInfo {
	infos := make([]lineInfo, len(raws))
	// carried[i] is the level a "=" on line i+1 would see.
	carried := make([]int, len(raws))
	undefined := make([]bool, len(raws))

	prev := 0

	for i, rl := range raws {
		info := lineInfo{}
		next := prev

		switch rl.kind {
		case levelAbsolute:
			info.level = rl.n
			next = rl.n
		case levelSame:
			info.level = prev
		case levelAdd:
			info.level = prev + rl.n
			next = info.level
		case levelSub:
			info.level = max(prev-rl.n, 0)
			next = info.level
		case levelStart:
			info.level = rl.n
			info.start = rl.n
			next = rl.n
		case levelEnd:
			info.level = rl.n
			info.end = rl.n
			next = max(rl.n-1, 0)
		case levelUndefined:
			undefined[i] = true
		}

		infos[i] = info
		carried[i] = next
		prev = next
	}

	for i := 0; i < len(infos); i++ {
		if !undefined[i] {
			continue
		}

		j := i
		for j < len(infos) && undefined[j] {
			j++
		}

		level := -1
		if i > 0 {
			level = carried[i-1]
		}

		if j < len(infos) && (level < 0 || infos[j].level < level) {
			level = infos[j].level
		}

		level = max(level, 0)

		for k := i; k < j; k++ {
			infos[k].level = level
		}

		i = j - 1
	}

	return infos
}

func markerLevels(lines []string, marker string) ([]lineInfo, error) {
	open, closing, err := ParseMarker(marker)
	if err != nil {
		return nil, err
	}

	infos := make([]lineInfo, len(lines))
	cur := 0

	for i, line := range lines {
		info := lineInfo{level: cur}

		for rest := line; rest != ""; {
			oi := strings.Index(rest, open)
			ci := strings.Index(rest, closing)

			if oi < 0 && ci < 0 {
				break
			}

			isOpen := oi >= 0 && (ci < 0 || oi <= ci)
			if isOpen {
				rest = rest[oi+len(open):]
			} else {
				rest = rest[ci+len(closing):]
			}

			n, width := leadingNumber(rest)
			rest = rest[width:]

			switch {
			case isOpen && n > 0:
				cur = n
				info.level = n
				info.start = minDepth(info.start, n)
			case isOpen:
				cur++
				info.level = max(info.level, cur)
				info.start = minDepth(info.start, cur)
			case n > 0:
				info.level = max(info.level, n)
				info.end = minDepth(info.end, n)
				cur = n - 1
			case cur > 0:
				info.level = max(info.level, cur)
				info.end = minDepth(info.end, cur)
				cur--
			}
		}

		infos[i] = info
	}

	return infos, nil
}

func indentLevels(lines []string, shiftWidth, tabStop int) []lineInfo {
	raws := make([]rawLevel, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			raws[i] = rawLevel{kind: levelUndefined}

			continue
		}

		raws[i] = rawLevel{n: expr.Indent(line, tabStop) / shiftWidth}
	}

	return resolve(raws)
}

func exprLevels(lines []string, expression string, shiftWidth int) ([]lineInfo, error) {
	env, err := expr.NewEnvironment(expr.FoldVariables()...)
	if err != nil {
		return nil, err
	}

	program, err := env.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpr, err)
	}

	raws := make([]rawLevel, len(lines))

	for i, line := range lines {
		vars := map[string]any{
			"line":       line,
			"lnum":       i + 1,
			"lines":      lines,
			"prevLine":   "",
			"nextLine":   "",
			"shiftwidth": shiftWidth,
		}
		if i > 0 {
			vars["prevLine"] = lines[i-1]
		}
		if i+1 < len(lines) {
			vars["nextLine"] = lines[i+1]
		}

		val, _, err := program.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidExpr, i+1, err)
		}

		switch v := val.(type) {
		case types.Int:
			if v < 0 {
				raws[i] = rawLevel{kind: levelUndefined}
			} else {
				raws[i] = rawLevel{n: int(v)}
			}

		case types.String:
			raws[i], err = parseLevel(string(v))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}

		default:
			return nil, fmt.Errorf("%w: line %d: expression returned %s, want int or string",
				ErrInvalidExpr, i+1, val.Type().TypeName())
		}
	}

	return resolve(raws), nil
}

func leadingNumber(s string) (int, int) {
	width := 0
	for width < len(s) && s[width] >= '0' && s[width] <= '9' {
		width++
	}

	if width == 0 {
		return 0, 0
	}

	n, err := strconv.Atoi(s[:width])
	if err != nil {
		return 0, width
	}

	return n, width
}

// minDepth returns the lower of two depths, treating zero as unset.
func minDepth(cur, depth int) int {
	if cur == 0 || depth < cur {
		return depth
	}

	return cur
}
