// internal/assets/indexer.go
package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"eam-assistant/internal/common/logger"
)

// IndexMapping keeps the description and equipment code analysed for fuzzy
// matching and the coded fields as keywords. Everything else is mapped
// dynamically.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "ASSETID": {
        "properties": {
          "EQUIPMENTCODE": {
            "type": "text",
            "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}
          },
          "DESCRIPTION": {"type": "text"},
          "ORGANIZATIONID": {
            "properties": {
              "ORGANIZATIONCODE": {
                "type": "text",
                "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}
              }
            }
          }
        }
      },
      "equipmentdesc": {"type": "text"},
      "department": {"type": "keyword"},
      "eqtype": {"type": "keyword"},
      "organization": {"type": "keyword"},
      "assetstatus": {"type": "keyword"},
      "operationalstatus": {"type": "keyword"},
      "category": {"type": "keyword"},
      "class": {"type": "keyword"},
      "commissiondate": {"type": "date", "format": "epoch_millis||strict_date_optional_time"},
      "TYPE": {"properties": {"TYPECODE": {"type": "keyword"}}},
      "CLASSID": {"properties": {"CLASSCODE": {"type": "keyword"}}},
      "STATUS": {"properties": {"STATUSCODE": {"type": "keyword"}}},
      "DEPARTMENTID": {"properties": {"DEPARTMENTCODE": {"type": "keyword"}}},
      "CATEGORYID": {"properties": {"CATEGORYCODE": {"type": "keyword"}}}
    }
  }
}`

// LoadStats summarises one bulk load.
type LoadStats struct {
	Read    int
	Skipped int
	Indexed uint64
	Failed  uint64
}

type Indexer struct {
	client     *elasticsearch.Client
	index      string
	numWorkers int
	logger     logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client:     client,
		index:      index,
		numWorkers: 2,
		logger:     log.WithFields(map[string]interface{}{"component": "asset-indexer", "index": index}),
	}
}

// CreateIndex creates the asset index. An existing index is left alone
// unless recreate is set, in which case it is dropped first.
func (i *Indexer) CreateIndex(ctx context.Context, recreate bool) (bool, error) {
	exists, err := i.exists(ctx)
	if err != nil {
		return false, err
	}

	if exists && !recreate {
		i.logger.Info("index already exists", nil)
		return false, nil
	}

	if exists {
		res, err := esapi.IndicesDeleteRequest{Index: []string{i.index}}.Do(ctx, i.client)
		if err != nil {
			return false, fmt.Errorf("delete index: %w", err)
		}
		res.Body.Close()
		if res.IsError() {
			return false, fmt.Errorf("delete index: %s", res.String())
		}
		i.logger.Info("index deleted", nil)
	}

	res, err := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(IndexMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return false, fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return false, fmt.Errorf("create index: %s", res.String())
	}

	i.logger.Info("index created", nil)
	return true, nil
}

func (i *Indexer) exists(ctx context.Context) (bool, error) {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	default:
		return false, fmt.Errorf("check index: %s", res.String())
	}
}

// ReadRecords decodes a JSON array of asset documents.
func ReadRecords(r io.Reader) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("expected a JSON list of objects: %w", err)
	}
	return records, nil
}

// Load bulk indexes records keyed by ASSETID.EQUIPMENTCODE. Records without
// an equipment code are skipped.
func (i *Indexer) Load(ctx context.Context, records []map[string]interface{}) (*LoadStats, error) {
	stats := &LoadStats{Read: len(records)}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         i.index,
		Client:        i.client,
		NumWorkers:    i.numWorkers,
		FlushBytes:    5e+6,
		FlushInterval: 30 * time.Second,
		Refresh:       "true",
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}

	var failed uint64
	for _, doc := range records {
		code, ok := equipmentCode(doc)
		if !ok {
			stats.Skipped++
			i.logger.Warn("skipping record without ASSETID.EQUIPMENTCODE", map[string]interface{}{
				"recordId": doc["recordid"],
			})
			continue
		}

		normalizeCommissionDate(doc)

		data, err := json.Marshal(doc)
		if err != nil {
			stats.Skipped++
			i.logger.Warn("skipping unencodable record", map[string]interface{}{"equipmentCode": code, "error": err})
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: code,
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				atomic.AddUint64(&failed, 1)
				fields := map[string]interface{}{"equipmentCode": item.DocumentID}
				if err != nil {
					fields["error"] = err
				} else {
					fields["reason"] = res.Error.Reason
				}
				i.logger.Error("failed to index record", fields)
			},
		})
		if err != nil {
			_ = bi.Close(ctx)
			return nil, fmt.Errorf("queue record %s: %w", code, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return nil, fmt.Errorf("flush bulk indexer: %w", err)
	}

	biStats := bi.Stats()
	stats.Indexed = biStats.NumIndexed
	stats.Failed = biStats.NumFailed
	if stats.Failed < failed {
		stats.Failed = failed
	}

	i.logger.Info("bulk load finished", map[string]interface{}{
		"read":    stats.Read,
		"skipped": stats.Skipped,
		"indexed": stats.Indexed,
		"failed":  stats.Failed,
	})
	return stats, nil
}

func equipmentCode(doc map[string]interface{}) (string, bool) {
	value, ok := lookupPath(doc, "ASSETID.EQUIPMENTCODE")
	if !ok {
		return "", false
	}
	code := strings.TrimSpace(fmt.Sprint(value))
	return code, code != ""
}

// normalizeCommissionDate flattens the EAM date object to the epoch millis
// held in its YEAR member, or drops it when that is not numeric.
func normalizeCommissionDate(doc map[string]interface{}) {
	raw, ok := doc["COMMISSIONDATE"].(map[string]interface{})
	if !ok {
		return
	}
	year, ok := raw["YEAR"]
	if !ok {
		return
	}
	switch v := year.(type) {
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			doc["COMMISSIONDATE"] = ms
			return
		}
		if f, err := v.Float64(); err == nil {
			doc["COMMISSIONDATE"] = int64(f)
			return
		}
	case float64:
		doc["COMMISSIONDATE"] = int64(v)
		return
	}
	delete(doc, "COMMISSIONDATE")
}
