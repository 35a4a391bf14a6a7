package main

// Minimal stand-in for the optimizer worker used by the blackbox suite.
// Speaks the line-delimited JSON protocol on stdin/stdout: wrapOriginal
// echoes the document with fixed dimensions, process strips spaces between
// tags.

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

type request struct {
	ID     uint64 `json:"id"`
	Action string `json:"action"`
	Data   string `json:"data"`
}

type result struct {
	Data   string  `json:"data"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type response struct {
	ID     uint64  `json:"id"`
	Result *result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func main() {
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 32<<20)
	enc := json.NewEncoder(os.Stdout)
	for sc.Scan() {
		var req request
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
			continue
		}
		resp := response{ID: req.ID}
		switch req.Action {
		case "wrapOriginal":
			resp.Result = &result{Data: req.Data, Width: 640, Height: 480}
		case "process":
			out := strings.ReplaceAll(req.Data, "> <", "><")
			resp.Result = &result{Data: out, Width: 640, Height: 480}
		default:
			resp.Error = "unknown action: " + req.Action
		}
		if err := enc.Encode(&resp); err != nil {
			return
		}
	}
}
