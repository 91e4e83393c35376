// Package ginjsonscope exposes document analysis over HTTP using Gin.
// Mount Routes on a router and POST documents to /analyze or /schema.
package ginjsonscope

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsonscope/jsonscope/pkg/jsonscope"
	"github.com/jsonscope/jsonscope/pkg/jsonscope/schema"
)

// Routes mounts the analysis endpoints on r. The given options are the
// service defaults; individual requests may tighten them via query
// parameters (max_depth, sample_limit, structure_only).
func Routes(r gin.IRouter, opts ...jsonscope.Option) {
	r.POST("/analyze", AnalyzeHandler(opts...))
	r.POST("/schema", SchemaHandler(opts...))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// AnalyzeHandler returns a handler that analyzes the raw request body and
// responds with the structure report. Analysis itself never fails — damaged
// documents produce partial reports with status 200; only an unreadable
// request body is an error.
func AnalyzeHandler(opts ...jsonscope.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		c.JSON(http.StatusOK, jsonscope.AnalyzeBytes(body, requestOptions(c, opts)...))
	}
}

// SchemaHandler returns a handler that analyzes the request body and
// responds with an inferred JSON Schema skeleton.
func SchemaHandler(opts ...jsonscope.Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		rep := jsonscope.AnalyzeBytes(body, requestOptions(c, opts)...)
		c.JSON(http.StatusOK, schema.Infer(rep))
	}
}

func requestOptions(c *gin.Context, base []jsonscope.Option) []jsonscope.Option {
	opts := append([]jsonscope.Option{}, base...)
	if v := c.Query("max_depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts = append(opts, jsonscope.WithMaxDepth(n))
		}
	}
	if v := c.Query("sample_limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts = append(opts, jsonscope.WithArraySampleLimit(n))
		}
	}
	if v := c.Query("structure_only"); v == "true" || v == "1" {
		opts = append(opts, jsonscope.WithStructureOnly())
	}
	return opts
}
