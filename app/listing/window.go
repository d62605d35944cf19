package listing

// DefaultMaxButtons is the default number of contiguous page buttons.
const DefaultMaxButtons = 5

// ControlKind is a kind of page selector control.
type ControlKind int

// Page selector controls.
const (
	Prev ControlKind = iota
	Number
	Ellipsis
	Next
)

// PageControl is a single page selector control.
// Page is the page to navigate to, zero for ellipsis.
type PageControl struct {
	Kind   ControlKind
	Page   int
	Active bool
}

// PageWindow returns the page selector controls for the current page:
// optional previous arrow, first page with ellipsis, up to maxButtons
// pages centered on the current one, ellipsis with last page and
// optional next arrow.
func PageWindow(current, total, maxButtons int) []PageControl {
	if total < 1 {
		total = 1
	}
	if maxButtons < 1 {
		maxButtons = DefaultMaxButtons
	}
	current = clamp(current, 1, total)

	start := max(1, current-maxButtons/2)
	end := min(total, start+maxButtons-1)
	if end-start+1 < maxButtons {
		start = max(1, end-maxButtons+1)
	}

	var res []PageControl
	number := func(p int) PageControl { return PageControl{Kind: Number, Page: p, Active: p == current} }

	if current > 1 {
		res = append(res, PageControl{Kind: Prev, Page: current - 1})
	}

	if start > 1 {
		res = append(res, number(1))
		if start > 2 {
			res = append(res, PageControl{Kind: Ellipsis})
		}
	}

	for p := start; p <= end; p++ {
		res = append(res, number(p))
	}

	if end < total {
		if end < total-1 {
			res = append(res, PageControl{Kind: Ellipsis})
		}
		res = append(res, number(total))
	}

	if current < total {
		res = append(res, PageControl{Kind: Next, Page: current + 1})
	}

	return res
}

func clamp(v, lo, hi int) int { return max(lo, min(hi, v)) }

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
