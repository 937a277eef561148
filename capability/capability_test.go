package capability

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/shadowroot/dom"
)

func TestDetector_Memoizes(t *testing.T) {
	calls := 0
	d := NewDetector(func() bool { calls++; return true }, nil)

	for i := 0; i < 3; i++ {
		if !d.NativeSupport() {
			t.Fatal("expected native support")
		}
	}
	if calls != 1 {
		t.Fatalf("probe calls: got %d, want 1", calls)
	}
}

func TestDetector_Concurrent(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDetector(func() bool {
		mu.Lock()
		calls++
		mu.Unlock()
		return false
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.NativeSupport()
		}()
	}
	wg.Wait()
	if calls != 1 {
		t.Fatalf("probe calls: got %d, want 1", calls)
	}
}

func TestDetector_PanicMeansUnsupported(t *testing.T) {
	d := NewDetector(func() bool { panic("no parser") }, nil)
	if d.NativeSupport() {
		t.Fatal("a panicking probe must report no native support")
	}
}

func TestDetector_NilProbe(t *testing.T) {
	if NewDetector(nil, nil).NativeSupport() {
		t.Fatal("nil probe must report no native support")
	}
}

func TestFixed(t *testing.T) {
	if !Fixed(true).NativeSupport() || Fixed(false).NativeSupport() {
		t.Fatal("Fixed must return its argument")
	}
}

func TestParserProbe(t *testing.T) {
	if ParserProbe(dom.ParseOptions{})() {
		t.Fatal("plain parser has no declarative shadow roots")
	}
	if !ParserProbe(dom.ParseOptions{NativeShadowRoots: true})() {
		t.Fatal("native parser should report support")
	}
	if ParserProbe(dom.ParseOptions{NativeShadowRoots: true, ModeAttribute: dom.AttrShadowRootLegacy})() {
		t.Fatal("a parser reading only the legacy attribute does not support the probe markup")
	}
}

func TestDefault(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default must be a single detector")
	}
	if NativeSupport() {
		t.Fatal("default parser probe should report no native support")
	}
}

func TestRodProbe(t *testing.T) {
	if os.Getenv("SHADOWROOT_CHROME") != "1" {
		t.Skip("set SHADOWROOT_CHROME=1 to probe a real Chrome")
	}
	probe := RodProbe(context.Background(), RodConfig{
		RemoteURL: os.Getenv("SHADOWROOT_CHROME_URL"),
		Timeout:   time.Minute,
	})
	// current Chrome releases parse declarative shadow roots natively
	if !NewDetector(probe, nil).NativeSupport() {
		t.Fatal("expected Chrome to support declarative shadow roots")
	}
}

func TestRodProbe_UnreachableBrowser(t *testing.T) {
	probe := RodProbe(context.Background(), RodConfig{
		RemoteURL: "ws://127.0.0.1:1/devtools/browser/none",
		Timeout:   2 * time.Second,
	})
	if probe() {
		t.Fatal("an unreachable browser must report no native support")
	}
}

func TestRodProbe_ScriptPrefersUnsafeParsers(t *testing.T) {
	if !strings.Contains(probeJS, ProbeMarkup) {
		t.Fatal("browser script must parse the same markup as ParserProbe")
	}
	setHTML := strings.Index(probeJS, "setHTMLUnsafe(")
	parseHTML := strings.Index(probeJS, "parseHTMLUnsafe(")
	inner := strings.Index(probeJS, "innerHTML =")
	if setHTML < 0 || parseHTML < 0 || inner < 0 {
		t.Fatalf("missing a parsing entry point:\n%s", probeJS)
	}
	if setHTML > inner || parseHTML > inner {
		t.Fatal("innerHTML must only be the fallback")
	}
}
