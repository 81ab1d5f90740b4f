// Package askdata answers plain-language questions about tabular data.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/askdata/dataset"
//	    "github.com/spektr-org/askdata/pipeline"
//	    "github.com/spektr-org/askdata/translator"
//	)
//
//	t, _ := translator.New(translator.DefaultOpenRouterConfig(apiKey))
//	res := pipeline.New(t).Run(ctx, "total sales by region", dataset.Sample())
//
// The translator turns the question into an engine.Intent, the catalog binds
// it to an operation, and the engine computes a table, value or plot Result.
// Only the translator calls an external service; all computation is local.
package askdata
