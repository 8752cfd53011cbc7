// Package jurisrank provides an in-process Go client for ranking Dutch case
// law: vector retrieval from Valkey or Qdrant, court and keyword scoring and
// optional reranking, without running the HTTP service.
//
//	client, _ := jurisrank.New(ctx,
//	    jurisrank.WithValkey("localhost:6379", ""),
//	    jurisrank.WithEmbedder(myEmbedder),
//	    jurisrank.WithDimensions(1024),
//	)
//	defer client.Close()
//
//	_ = client.Upsert(ctx, jurisrank.Decision{ID: "ECLI:NL:HR:2019:1", Text: text, Metadata: md})
//	res, _ := client.Search(ctx, "case-42", jurisrank.SearchRequest{
//	    Text:     "huurachterstand ontbinding",
//	    Keywords: []string{"ontbinding"},
//	    Courts:   []string{"Hoge Raad"},
//	})
package jurisrank
