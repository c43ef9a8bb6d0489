package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/pixel-slider-mcp/internal/engine"
	"github.com/ironsheep/pixel-slider-mcp/internal/imaging"
	"github.com/ironsheep/pixel-slider-mcp/internal/pixelate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pixel_load", "pixel_select").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Session
	case "pixel_load":
		return s.handlePixelLoad(args)
	case "pixel_close":
		return s.handlePixelClose(args)
	case "pixel_status":
		return s.handlePixelStatus(args)

	// Levels
	case "pixel_select":
		return s.handlePixelSelect(args)
	case "pixel_get_level":
		return s.handlePixelGetLevel(args)
	case "pixel_retry":
		return s.handlePixelRetry(args)
	case "pixel_export":
		return s.handlePixelExport(args)

	// Inspection
	case "pixel_sample_color":
		return s.handlePixelSampleColor(args)
	case "pixel_palette":
		return s.handlePixelPalette(args)
	case "pixel_crop":
		return s.handlePixelCrop(args)
	case "pixel_grid_overlay":
		return s.handlePixelGridOverlay(args)
	case "pixel_compare":
		return s.handlePixelCompare(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments; missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// LevelResult describes one level and, when it is Ready, carries its image.
type LevelResult struct {
	Level     int                   `json:"level"`
	BlockSize int                   `json:"block_size"`
	State     engine.State          `json:"state"`
	Error     string                `json:"error,omitempty"`
	Image     *imaging.EncodedImage `json:"image,omitempty"`
}

// levelResult builds the result for level, encoding the image scaled to
// maxWidth when it is Ready.
func (sess *session) levelResult(level, maxWidth int) (*LevelResult, error) {
	eng := sess.engine
	res := &LevelResult{
		Level:     level,
		BlockSize: eng.Plan().BlockSize(level),
		State:     eng.State(level),
	}

	switch res.State {
	case engine.StateReady:
		img, _ := eng.Cached(level)
		enc, err := imaging.EncodePreview(img, maxWidth)
		if err != nil {
			return nil, err
		}
		res.Image = enc
	case engine.StateFailed:
		if err := eng.Err(level); err != nil {
			res.Error = err.Error()
		}
	}

	return res, nil
}

// === Session Handlers ===

type pixelLoadArgs struct {
	Path             string `json:"path"`
	Reload           bool   `json:"reload"`
	InitialSelection *int   `json:"initial_selection,omitempty"`
	Strategy         string `json:"strategy,omitempty"`
}

// PixelLoadResult describes a newly started session.
type PixelLoadResult struct {
	Session    int               `json:"session"`
	Info       imaging.ImageInfo `json:"info"`
	Plan       engine.Plan       `json:"plan"`
	BlockSizes []int             `json:"block_sizes"`
	Selection  int               `json:"selection"`
	Strategy   engine.Strategy   `json:"strategy"`
}

func (s *Server) handlePixelLoad(args json.RawMessage) (interface{}, error) {
	var a pixelLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	opts := s.cfg.EngineOptions()
	if a.InitialSelection != nil {
		opts.InitialSelection = *a.InitialSelection
	}
	if a.Strategy != "" {
		strategy, err := engine.ParseStrategy(a.Strategy)
		if err != nil {
			return nil, err
		}
		opts.Strategy = strategy
	}

	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	sess, err := s.openSession(img, opts)
	if err != nil {
		return nil, err
	}

	plan := sess.engine.Plan()
	return &PixelLoadResult{
		Session:    sess.id,
		Info:       sess.info,
		Plan:       plan,
		BlockSizes: plan.BlockSizes(),
		Selection:  sess.engine.Selection(),
		Strategy:   sess.engine.Status().Strategy,
	}, nil
}

func (s *Server) handlePixelClose(args json.RawMessage) (interface{}, error) {
	return map[string]interface{}{"closed": s.closeSession()}, nil
}

// PixelStatusResult is the status of the active session.
type PixelStatusResult struct {
	Session int               `json:"session"`
	Info    imaging.ImageInfo `json:"info"`
	engine.Status
}

func (s *Server) handlePixelStatus(args json.RawMessage) (interface{}, error) {
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return &PixelStatusResult{
		Session: sess.id,
		Info:    sess.info,
		Status:  sess.engine.Status(),
	}, nil
}

// === Level Handlers ===

type pixelSelectArgs struct {
	Level    int  `json:"level"`
	MaxWidth *int `json:"max_width,omitempty"`
}

func (s *Server) handlePixelSelect(args json.RawMessage) (interface{}, error) {
	var a pixelSelectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	level := sess.engine.SetSelection(a.Level)
	return sess.levelResult(level, s.maxWidth(a.MaxWidth))
}

type pixelGetLevelArgs struct {
	Level    *int `json:"level,omitempty"`
	MaxWidth *int `json:"max_width,omitempty"`
}

func (s *Server) handlePixelGetLevel(args json.RawMessage) (interface{}, error) {
	var a pixelGetLevelArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	level, err := sess.resolveLevel(a.Level)
	if err != nil {
		return nil, err
	}
	return sess.levelResult(level, s.maxWidth(a.MaxWidth))
}

// maxWidth returns the requested preview width or the configured default.
func (s *Server) maxWidth(requested *int) int {
	if requested != nil {
		return *requested
	}
	return s.cfg.Preview.MaxWidth
}

type pixelRetryArgs struct {
	Level int `json:"level"`
}

func (s *Server) handlePixelRetry(args json.RawMessage) (interface{}, error) {
	var a pixelRetryArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	err = sess.engine.Retry(a.Level)
	if errors.Is(err, engine.ErrNotFailed) || errors.Is(err, engine.ErrLevelRange) {
		return nil, err
	}

	// A failed recomputation leaves the level Failed with the new error.
	res := &LevelResult{
		Level:     a.Level,
		BlockSize: sess.engine.Plan().BlockSize(a.Level),
		State:     sess.engine.State(a.Level),
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res, nil
}

type pixelExportArgs struct {
	Path        string  `json:"path"`
	Format      string  `json:"format,omitempty"`
	JPEGQuality int     `json:"jpeg_quality,omitempty"`
	Prefix      string  `json:"prefix,omitempty"`
	WaitSeconds float64 `json:"wait_seconds,omitempty"`
}

// PixelExportResult lists the exported files and the levels left out.
type PixelExportResult struct {
	imaging.ExportResult
	Levels  []int `json:"levels"`
	Skipped []int `json:"skipped,omitempty"`
}

func (s *Server) handlePixelExport(args json.RawMessage) (interface{}, error) {
	var a pixelExportArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}

	opts := s.cfg.ExportOptions()
	if a.Format != "" {
		if opts.Format, err = imaging.ParseExportFormat(a.Format); err != nil {
			return nil, err
		}
	}
	if a.JPEGQuality != 0 {
		opts.JPEGQuality = a.JPEGQuality
	}
	opts.Prefix = a.Prefix

	if a.WaitSeconds > 0 {
		ctx, cancel := context.WithTimeout(s.ctx, time.Duration(a.WaitSeconds*float64(time.Second)))
		err := sess.engine.Wait(ctx)
		cancel()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}

	levels, ready, skipped := readyLevels(sess.engine)
	res, err := imaging.Export(a.Path, levels, opts)
	if err != nil {
		return nil, err
	}
	return &PixelExportResult{ExportResult: *res, Levels: ready, Skipped: skipped}, nil
}

// readyLevels collects every Ready level of eng.
func readyLevels(eng *engine.Engine) (levels []imaging.Level, ready, skipped []int) {
	plan := eng.Plan()
	for level := 0; level <= plan.MaxLevel; level++ {
		img, ok := eng.Cached(level)
		if !ok {
			skipped = append(skipped, level)
			continue
		}
		levels = append(levels, imaging.Level{Level: level, BlockSize: plan.BlockSize(level), Image: img})
		ready = append(ready, level)
	}
	return levels, ready, skipped
}

// === Inspection Handlers ===

type pixelSampleColorArgs struct {
	Level *int `json:"level,omitempty"`
	X     int  `json:"x"`
	Y     int  `json:"y"`
}

// PixelSampleColorResult is the color of one pixel of a level together with
// the source pixel its block was sampled from.
type PixelSampleColorResult struct {
	Level     int                  `json:"level"`
	BlockSize int                  `json:"block_size"`
	Color     *imaging.ColorResult `json:"color"`
	SourceX   int                  `json:"source_x"`
	SourceY   int                  `json:"source_y"`
}

func (s *Server) handlePixelSampleColor(args json.RawMessage) (interface{}, error) {
	var a pixelSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	level, img, err := sess.readyLevel(a.Level)
	if err != nil {
		return nil, err
	}

	c, err := imaging.SampleColor(img, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	blockSize := sess.engine.Plan().BlockSize(level)
	b := img.Bounds()
	sx, sy := pixelate.SamplePoint(b.Dx(), b.Dy(), blockSize, a.X, a.Y)
	return &PixelSampleColorResult{
		Level:     level,
		BlockSize: blockSize,
		Color:     c,
		SourceX:   sx,
		SourceY:   sy,
	}, nil
}

type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

type pixelPaletteArgs struct {
	Level  *int        `json:"level,omitempty"`
	Count  int         `json:"count"`
	Region *regionArgs `json:"region,omitempty"`
	Exact  bool        `json:"exact"`
}

// PixelPaletteResult is the dominant colors of a level.
type PixelPaletteResult struct {
	Level int `json:"level"`
	*imaging.DominantColorsResult
}

func (s *Server) handlePixelPalette(args json.RawMessage) (interface{}, error) {
	var a pixelPaletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = 8
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	level, img, err := sess.readyLevel(a.Level)
	if err != nil {
		return nil, err
	}

	var region *imaging.Region
	if a.Region != nil {
		region = &imaging.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	}
	res, err := imaging.DominantColors(img, a.Count, region, a.Exact)
	if err != nil {
		return nil, err
	}
	return &PixelPaletteResult{Level: level, DominantColorsResult: res}, nil
}

type pixelCropArgs struct {
	Level *int    `json:"level,omitempty"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handlePixelCrop(args json.RawMessage) (interface{}, error) {
	var a pixelCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	_, img, err := sess.readyLevel(a.Level)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}

type pixelGridOverlayArgs struct {
	Level     *int   `json:"level,omitempty"`
	GridColor string `json:"grid_color"`
}

func (s *Server) handlePixelGridOverlay(args json.RawMessage) (interface{}, error) {
	var a pixelGridOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridColor == "" {
		a.GridColor = "#FF000080"
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	level, img, err := sess.readyLevel(a.Level)
	if err != nil {
		return nil, err
	}
	return imaging.GridOverlay(img, sess.engine.Plan().BlockSize(level), a.GridColor)
}

type pixelCompareArgs struct {
	Level   *int `json:"level,omitempty"`
	Against int  `json:"against"`
}

// PixelCompareResult measures how far one level is from another.
type PixelCompareResult struct {
	Level   int `json:"level"`
	Against int `json:"against"`
	*imaging.CompareResult
}

func (s *Server) handlePixelCompare(args json.RawMessage) (interface{}, error) {
	var a pixelCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	level, img, err := sess.readyLevel(a.Level)
	if err != nil {
		return nil, err
	}
	against, ref, err := sess.readyLevel(&a.Against)
	if err != nil {
		return nil, err
	}

	res, err := imaging.Compare(img, ref)
	if err != nil {
		return nil, err
	}
	return &PixelCompareResult{Level: level, Against: against, CompareResult: res}, nil
}
