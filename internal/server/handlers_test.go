package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/docdiff/internal/reconcile"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp, "handleRequest returned nil")
	return resp
}

// toolResult decodes the JSON text content of a successful tool response.
func toolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), v))
}

const confirmTotals = "data:{\"content\":\"imgtext_1=[\\\"Total: 50\\\"]\\nimgtext_2=[\\\"Total: 60\\\"]\"}\ndata:[DONE]"

var compareArgs = map[string]interface{}{
	"first": []map[string]interface{}{
		{"DetectedText": "Invoice #123", "Polygon": []map[string]float64{{"X": 0, "Y": 0}, {"X": 100, "Y": 20}}},
		{"DetectedText": "Total: 50", "Polygon": []map[string]float64{{"X": 10, "Y": 200}, {"X": 90, "Y": 220}}},
	},
	"second": []map[string]interface{}{
		{"DetectedText": "invoice123", "Polygon": []map[string]float64{{"X": 0, "Y": 0}, {"X": 100, "Y": 20}}},
		{"DetectedText": "Total: 60", "Polygon": []map[string]float64{{"X": 12, "Y": 204}, {"X": 92, "Y": 224}}},
	},
}

func TestHandleToolsCall_DocumentsCompare(t *testing.T) {
	fr := &fakeReasoner{reply: confirmTotals}
	s := newTestServer(t, fr)

	var got compareResult
	toolResult(t, callTool(t, s, "documents_compare", compareArgs), &got)

	assert.Equal(t, 1, fr.calls)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "only-in-1-1", got.Differences[0].ID)
	assert.Equal(t, reconcile.OnlyInFirst, got.Differences[0].Kind)
	assert.Equal(t, 10.0, got.Differences[0].First.X)
	assert.Equal(t, 80.0, got.Differences[0].First.Width)
	assert.Nil(t, got.Differences[0].Second)
	assert.Equal(t, "only-in-2-1", got.Differences[1].ID)
}

func TestHandleToolsCall_DocumentsCompare_Errors(t *testing.T) {
	tests := []struct {
		name     string
		reasoner reconcile.Reasoner
		args     interface{}
		wantCode int
	}{
		{"no engine", nil, compareArgs, -32000},
		{"service down", &fakeReasoner{err: errors.New("connection refused")}, compareArgs, -32000},
		{"missing sets", &fakeReasoner{}, map[string]interface{}{}, -32602},
		{"wrong type", &fakeReasoner{}, map[string]interface{}{"first": "oops"}, -32602},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, newTestServer(t, tt.reasoner), "documents_compare", tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Data)
		})
	}
}

func TestHandleToolsCall_DocumentsCompare_UnparseableReply(t *testing.T) {
	s := newTestServer(t, &fakeReasoner{reply: "no frames here"})

	var got compareResult
	toolResult(t, callTool(t, s, "documents_compare", compareArgs), &got)

	assert.Zero(t, got.Count)
	assert.NotNil(t, got.Differences)
}

func TestHandleToolsCall_DocumentsCompareImages(t *testing.T) {
	s := newTestServer(t, &fakeReasoner{reply: confirmTotals})

	var got compareImagesResult
	toolResult(t, callTool(t, s, "documents_compare_images", map[string]interface{}{
		"path1": "/scan/a.png",
		"path2": "/scan/b.png",
	}), &got)

	assert.Equal(t, 2, got.FirstDetections)
	assert.Equal(t, 2, got.SecondDetections)
	assert.Equal(t, 2, got.Count)

	resp := callTool(t, s, "documents_compare_images", map[string]interface{}{"path1": "/scan/a.png"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleToolsCall_DocumentsFirstPass(t *testing.T) {
	fr := &fakeReasoner{}
	s := newTestServer(t, fr)

	var got firstPassResult
	toolResult(t, callTool(t, s, "documents_first_pass", compareArgs), &got)

	assert.Zero(t, fr.calls)
	require.Len(t, got.OnlyInFirst, 1)
	assert.Equal(t, 1, got.OnlyInFirst[0].Index)
	assert.Equal(t, "total50", got.OnlyInFirst[0].Normalized)
	require.Len(t, got.OnlyInSecond, 1)
	assert.Equal(t, "Total: 60", got.OnlyInSecond[0].Text)
}

func TestHandleToolsCall_DifferencesRender(t *testing.T) {
	s := newTestServer(t, nil)
	imgPath := createTestImageFile(t, 200, 100, color.White)

	diffs := []map[string]interface{}{
		{"id": "only-in-1-0", "type": "only-in-first", "image1": map[string]interface{}{"x": 10, "y": 10, "width": 50, "height": 20, "text": "a"}, "image2": nil},
		{"id": "only-in-2-0", "type": "only-in-second", "image1": nil, "image2": map[string]interface{}{"x": 80, "y": 40, "width": 50, "height": 20, "text": "b"}},
	}

	var got struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		Highlights  int    `json:"highlights"`
		Side        string `json:"side"`
		Color       string `json:"color"`
	}
	toolResult(t, callTool(t, s, "differences_render", map[string]interface{}{
		"path":        imgPath,
		"differences": diffs,
		"side":        "second",
	}), &got)

	assert.Equal(t, 200, got.Width)
	assert.Equal(t, 1, got.Highlights)
	assert.Equal(t, "second", got.Side)
	assert.NotEmpty(t, got.ImageBase64)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, got.Color)

	resp := callTool(t, s, "differences_render", map[string]interface{}{
		"path": imgPath, "differences": diffs, "side": "third",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleToolsCall_DifferencesRender_SideAliases(t *testing.T) {
	s := newTestServer(t, nil)
	imgPath := createTestImageFile(t, 200, 100, color.White)

	diffs := []map[string]interface{}{
		{"id": "only-in-1-0", "type": "only-in-first", "image1": map[string]interface{}{"x": 10, "y": 10, "width": 50, "height": 20, "text": "a"}, "image2": nil},
		{"id": "only-in-2-0", "type": "only-in-second", "image1": nil, "image2": map[string]interface{}{"x": 80, "y": 40, "width": 50, "height": 20, "text": "b"}},
		{"id": "only-in-2-1", "type": "only-in-second", "image1": nil, "image2": map[string]interface{}{"x": 80, "y": 70, "width": 50, "height": 20, "text": "c"}},
	}

	tests := []struct {
		side       string
		want       string
		highlights int
	}{
		{"", "first", 1},
		{"1", "first", 1},
		{"Image1", "first", 1},
		{"2", "second", 2},
		{"IMAGE2", "second", 2},
	}

	for _, tt := range tests {
		t.Run(tt.side, func(t *testing.T) {
			var got struct {
				Highlights int    `json:"highlights"`
				Side       string `json:"side"`
			}
			toolResult(t, callTool(t, s, "differences_render", map[string]interface{}{
				"path": imgPath, "differences": diffs, "side": tt.side,
			}), &got)
			assert.Equal(t, tt.want, got.Side)
			assert.Equal(t, tt.highlights, got.Highlights)
		})
	}
}

func TestHandleToolsCall_DifferencesRender_CustomColor(t *testing.T) {
	s := newTestServer(t, nil)
	imgPath := createTestImageFile(t, 50, 50, color.White)

	var got struct {
		Color string `json:"color"`
	}
	toolResult(t, callTool(t, s, "differences_render", map[string]interface{}{
		"path": imgPath, "differences": []interface{}{}, "color": "#00ff00",
	}), &got)
	assert.Equal(t, "#00ff00", got.Color)
}

func TestHandleToolsCall_DifferenceCrop(t *testing.T) {
	s := newTestServer(t, nil)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var got struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		MimeType string `json:"mime_type"`
	}
	toolResult(t, callTool(t, s, "difference_crop", map[string]interface{}{
		"path":  imgPath,
		"box":   map[string]interface{}{"x": 20, "y": 20, "width": 30, "height": 10},
		"scale": 2.0,
	}), &got)

	// 30x10 box plus 8px default padding on each side, doubled
	assert.Equal(t, 92, got.Width)
	assert.Equal(t, 52, got.Height)
	assert.Equal(t, "image/png", got.MimeType)

	resp := callTool(t, s, "difference_crop", map[string]interface{}{"path": imgPath})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t, nil)

	resp := callTool(t, s, "difference_crop", map[string]interface{}{
		"path": "/nonexistent/image.png",
		"box":  map[string]interface{}{"x": 0, "y": 0, "width": 5, "height": 5},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
}

func TestHandleToolsCall_DifferencesPair(t *testing.T) {
	s := newTestServer(t, &fakeReasoner{reply: confirmTotals})

	var compared compareResult
	toolResult(t, callTool(t, s, "documents_compare", compareArgs), &compared)

	var got pairResult
	toolResult(t, callTool(t, s, "differences_pair", map[string]interface{}{
		"differences": compared.Differences,
	}), &got)

	assert.Equal(t, 100.0, got.Threshold)
	require.Len(t, got.Pairs, 1)
	assert.Equal(t, "only-in-1-1", got.Pairs[0].First.ID)
	assert.Equal(t, "only-in-2-1", got.Pairs[0].Second.ID)
	assert.Empty(t, got.Unpaired)

	toolResult(t, callTool(t, s, "differences_pair", map[string]interface{}{
		"differences": compared.Differences,
		"threshold":   1,
	}), &got)
	assert.Empty(t, got.Pairs)
	assert.Len(t, got.Unpaired, 2)
}

func TestHandleToolsCall_TextNormalize(t *testing.T) {
	s := newTestServer(t, nil)

	var got map[string]string
	toolResult(t, callTool(t, s, "text_normalize", map[string]interface{}{"text": "Hello, World!"}), &got)

	assert.Equal(t, "helloworld", got["normalized"])
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t, nil)

	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32000, resp.Error.Code)
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t, nil)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer(t, nil)

	// Every defined tool must be dispatched, even if its arguments are bad.
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(context.Background(), tool.Name, json.RawMessage(`{}`))
			if err != nil && err.Error() == "unknown tool: "+tool.Name {
				t.Errorf("tool %s is defined but not dispatched", tool.Name)
			}
		})
	}
}

func TestMustMarshalJSON(t *testing.T) {
	got := mustMarshalJSON(map[string]string{"text": "A&B <b>"})
	assert.Contains(t, got, "A&B <b>")

	assert.Empty(t, mustMarshalJSON(func() {}))
}
