package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// OTLPCore is a zapcore.Core that ships log records to an OTel Collector
// over OTLP/HTTP JSON. Export failures are swallowed so logging never blocks
// or breaks the service.
type OTLPCore struct {
	zapcore.LevelEnabler
	endpoint      string
	serviceName   string
	client        *http.Client
	mu            sync.Mutex
	buffer        []logRecord
	batchSize     int
	batchInterval time.Duration
	stop          chan struct{}
	wg            sync.WaitGroup
}

type logRecord struct {
	Timestamp         int64      `json:"timeUnixNano"`
	ObservedTimestamp int64      `json:"observedTimeUnixNano"`
	SeverityNumber    int32      `json:"severityNumber"`
	SeverityText      string     `json:"severityText"`
	Body              any        `json:"body"`
	Attributes        []keyValue `json:"attributes,omitempty"`
	TraceID           string     `json:"traceId,omitempty"`
	SpanID            string     `json:"spanId,omitempty"`
}

type keyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type logExportRequest struct {
	ResourceLogs []resourceLogs `json:"resourceLogs"`
}

type resourceLogs struct {
	Resource  logResource `json:"resource"`
	ScopeLogs []scopeLogs `json:"scopeLogs"`
}

type logResource struct {
	Attributes []keyValue `json:"attributes"`
}

type scopeLogs struct {
	Scope      logScope    `json:"scope"`
	LogRecords []logRecord `json:"logRecords"`
}

type logScope struct {
	Name string `json:"name"`
}

// NewOTLPCore creates a core exporting to the collector named in cfg.
// The collector address is the gRPC one from the telemetry config; logs go
// to the HTTP listener, which by convention sits one port above.
func NewOTLPCore(cfg *Config, level zapcore.LevelEnabler) *OTLPCore {
	if cfg == nil || cfg.OTLPEndpoint == "" {
		return nil
	}

	endpoint := cfg.OTLPEndpoint
	if strings.HasSuffix(endpoint, ":4317") {
		endpoint = strings.TrimSuffix(endpoint, ":4317") + ":4318"
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	batchInterval := cfg.BatchInterval
	if batchInterval <= 0 {
		batchInterval = time.Second
	}
	timeout := cfg.OTLPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	core := &OTLPCore{
		LevelEnabler:  level,
		endpoint:      fmt.Sprintf("http://%s/v1/logs", endpoint),
		serviceName:   cfg.ServiceName,
		client:        &http.Client{Timeout: timeout},
		buffer:        make([]logRecord, 0, batchSize),
		batchSize:     batchSize,
		batchInterval: batchInterval,
		stop:          make(chan struct{}),
	}

	core.wg.Add(1)
	go core.flushLoop()
	return core
}

func (c *OTLPCore) With(_ []zapcore.Field) zapcore.Core {
	// Fields reach Write through the checked entry.
	return c
}

func (c *OTLPCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write buffers the entry; a full batch flushes immediately.
func (c *OTLPCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	record := logRecord{
		Timestamp:         ent.Time.UnixNano(),
		ObservedTimestamp: time.Now().UnixNano(),
		SeverityNumber:    severityNumber(ent.Level),
		SeverityText:      ent.Level.String(),
		Body:              stringValue(ent.Message),
	}

	attrs := make([]keyValue, 0, len(fields)+1)
	if ent.Caller.Defined {
		attrs = append(attrs, keyValue{Key: "caller", Value: stringValue(ent.Caller.String())})
	}
	for _, f := range fields {
		switch f.Key {
		case "trace_id":
			record.TraceID = f.String
		case "span_id":
			record.SpanID = f.String
		default:
			if kv, ok := fieldAttribute(f); ok {
				attrs = append(attrs, kv)
			}
		}
	}
	record.Attributes = attrs

	c.mu.Lock()
	c.buffer = append(c.buffer, record)
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()

	if full {
		go c.flush()
	}
	return nil
}

// Sync flushes buffered logs
func (c *OTLPCore) Sync() error {
	c.flush()
	return nil
}

// Close stops the background flush loop and drains the buffer.
func (c *OTLPCore) Close() error {
	close(c.stop)
	c.wg.Wait()
	c.flush()
	return nil
}

func (c *OTLPCore) flushLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.batchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			return
		}
	}
}

func (c *OTLPCore) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	records := make([]logRecord, len(c.buffer))
	copy(records, c.buffer)
	c.buffer = c.buffer[:0]
	c.mu.Unlock()

	payload := logExportRequest{
		ResourceLogs: []resourceLogs{{
			Resource: logResource{
				Attributes: []keyValue{
					{Key: "service.name", Value: stringValue(c.serviceName)},
					{Key: "service.namespace", Value: stringValue("lycs-immo")},
				},
			},
			ScopeLogs: []scopeLogs{{
				Scope:      logScope{Name: "go.uber.org/zap"},
				LogRecords: records,
			}},
		}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// severityNumber maps zap levels onto OTLP severity numbers.
func severityNumber(level zapcore.Level) int32 {
	switch level {
	case zapcore.DebugLevel:
		return 5
	case zapcore.InfoLevel:
		return 9
	case zapcore.WarnLevel:
		return 13
	case zapcore.ErrorLevel:
		return 17
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return 21
	default:
		return 0
	}
}

func stringValue(s string) map[string]string {
	return map[string]string{"stringValue": s}
}

// fieldAttribute converts a zap field into an OTLP attribute.
func fieldAttribute(f zapcore.Field) (keyValue, bool) {
	switch f.Type {
	case zapcore.StringType:
		return keyValue{Key: f.Key, Value: stringValue(f.String)}, true
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return keyValue{Key: f.Key, Value: map[string]int64{"intValue": f.Integer}}, true
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return keyValue{Key: f.Key, Value: map[string]uint64{"intValue": uint64(f.Integer)}}, true
	case zapcore.Float64Type:
		return keyValue{Key: f.Key, Value: map[string]float64{"doubleValue": math.Float64frombits(uint64(f.Integer))}}, true
	case zapcore.Float32Type:
		return keyValue{Key: f.Key, Value: map[string]float64{"doubleValue": float64(math.Float32frombits(uint32(f.Integer)))}}, true
	case zapcore.BoolType:
		return keyValue{Key: f.Key, Value: map[string]bool{"boolValue": f.Integer == 1}}, true
	case zapcore.DurationType:
		return keyValue{Key: f.Key, Value: stringValue(time.Duration(f.Integer).String())}, true
	case zapcore.TimeType:
		t := time.Unix(0, f.Integer)
		if loc, ok := f.Interface.(*time.Location); ok {
			t = t.In(loc)
		}
		return keyValue{Key: f.Key, Value: stringValue(t.Format(time.RFC3339Nano))}, true
	case zapcore.ErrorType:
		if err, ok := f.Interface.(error); ok {
			return keyValue{Key: f.Key, Value: stringValue(err.Error())}, true
		}
		return keyValue{}, false
	case zapcore.StringerType:
		if s, ok := f.Interface.(fmt.Stringer); ok {
			return keyValue{Key: f.Key, Value: stringValue(s.String())}, true
		}
		return keyValue{}, false
	default:
		if f.Interface != nil {
			if data, err := json.Marshal(f.Interface); err == nil {
				return keyValue{Key: f.Key, Value: stringValue(string(data))}, true
			}
		}
		return keyValue{}, false
	}
}
