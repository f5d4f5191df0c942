package explorer

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/scanner"
)

// Fingerprint scans the current page and digests a sorted, deduplicated
// token list {section:<heading>, field:<label>} into a hex string, where
// <label> is the scanner's derived label from any tier of its label chain
// (not only aria-label/aria-labelledby), or the CSS selector for a control
// with no label. Uses FNV-1a: non-cryptographic, stable, and sufficient
// avalanche for short token lists — callers only need stability and
// inequality under observable DOM change, not collision resistance.
func Fingerprint(ctx context.Context, d browser.Driver) (string, []scanner.SectionInventory, error) {
	inventories, err := scanner.ScanPage(ctx, d)
	if err != nil {
		return "", nil, err
	}
	return digest(inventories), inventories, nil
}

func digest(inventories []scanner.SectionInventory) string {
	tokens := map[string]bool{}
	for _, inv := range inventories {
		tokens["section:"+inv.Section] = true
		for _, el := range inv.Elements {
			label := el.Label
			if label == "" {
				label = el.CSSSelector
			}
			tokens["field:"+label] = true
		}
	}

	sorted := make([]string, 0, len(tokens))
	for t := range tokens {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)

	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.Join(sorted, "\n")))
	return fnv32Hex(h.Sum32())
}

func fnv32Hex(v uint32) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}
