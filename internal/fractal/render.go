package fractal

import (
	"runtime"
	"sync"
)

// RenderSamples renders cfg onto an n*n row-major grid of smooth values
// normalized by MaxIterations into [0,1]. The mapping is the fixed centered
// transform covering [-2,2) on both axes, independent of cfg.View, so
// fitness scores do not depend on where the on-screen camera happens to be.
func RenderSamples(cfg *Config, n int) []float64 {
	samples := make([]float64, n*n)
	half := float64(n) / 2
	maxIter := float64(cfg.MaxIterations)
	for y := 0; y < n; y++ {
		v := (float64(y) - half) / half * 2
		for x := 0; x < n; x++ {
			u := (float64(x) - half) / half * 2
			samples[y*n+x] = cfg.EvaluateSmooth(complex(u, v)) / maxIter
		}
	}
	return samples
}

// RenderFrame renders a full width*height frame of smooth values (in
// [0, MaxIterations]) row-major, mapping pixels to points through cfg.View.
// Rows are rendered in parallel: point evaluation is a pure function of
// point and configuration, so distinct points need no synchronization.
func RenderFrame(cfg *Config, width, height, workers int) []float64 {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	frame := make([]float64, width*height)

	rows := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				renderRow(cfg, frame, y, width, height)
			}
		}()
	}
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return frame
}

func renderRow(cfg *Config, frame []float64, y, width, height int) {
	halfW := float64(width) / 2
	halfH := float64(height) / 2
	// Aspect correction divides both axes by the half-height so square
	// features stay square on wide frames.
	im := (float64(y)-halfH)/halfH*2/cfg.View.Zoom + cfg.View.OffsetY
	for x := 0; x < width; x++ {
		re := (float64(x)-halfW)/halfH*2/cfg.View.Zoom + cfg.View.OffsetX
		frame[y*width+x] = cfg.EvaluateSmooth(complex(re, im))
	}
}
