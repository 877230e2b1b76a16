package tire

import (
	"sync"
	"testing"
)

func checkRanges(t *testing.T, tr Tire) {
	t.Helper()
	if tr.Pressure < minPressure || tr.Pressure >= maxPressure {
		t.Errorf("pressure %v outside [%v, %v)", tr.Pressure, minPressure, maxPressure)
	}
	if tr.Size.Width < minWidth || tr.Size.Width >= maxWidth {
		t.Errorf("width %v outside [%v, %v)", tr.Size.Width, minWidth, maxWidth)
	}
	if tr.Size.Height < minHeight || tr.Size.Height >= maxHeight {
		t.Errorf("height %v outside [%v, %v)", tr.Size.Height, minHeight, maxHeight)
	}
}

func TestCreateRandomTire_Ranges(t *testing.T) {
	for i := 0; i < 500; i++ {
		checkRanges(t, CreateRandomTire())
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42)
	b := NewGenerator(42)
	for i := 0; i < 20; i++ {
		ta, tb := a.Tire(), b.Tire()
		if ta != tb {
			t.Fatalf("tire %d differs: %+v vs %+v", i, ta, tb)
		}
		checkRanges(t, ta)
	}
}

func TestGenerator_BothMaterials(t *testing.T) {
	g := NewGenerator(7)
	seen := map[Material]bool{}
	for i := 0; i < 200; i++ {
		seen[g.Tire().Material] = true
	}
	if !seen[Plastic] || !seen[Rubber] {
		t.Errorf("expected both materials in 200 draws, saw %v", seen)
	}
}

func TestGenerator_Concurrent(t *testing.T) {
	g := NewGenerator(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = g.Tire()
			}
		}()
	}
	wg.Wait()
}

func TestSampleTire_Bounds(t *testing.T) {
	low := sampleTire(func() float64 { return 0 })
	if low.Material != Plastic || low.Pressure != minPressure || low.Size.Width != minWidth || low.Size.Height != minHeight {
		t.Errorf("low sample = %+v", low)
	}

	high := sampleTire(func() float64 { return 0.5 })
	if high.Material != Rubber {
		t.Errorf("0.5 should select Rubber, got %v", high.Material)
	}
	if high.Pressure != 45 || high.Size.Width != 7.5 || high.Size.Height != 15 {
		t.Errorf("mid sample = %+v", high)
	}
}
