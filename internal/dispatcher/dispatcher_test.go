package dispatcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"bassethound/internal/protocol"
	"bassethound/internal/registry"
)

// responseCollector 收集分发器发出的响应，供断言使用
type responseCollector struct {
	mu        sync.Mutex
	responses []*protocol.Response
	ch        chan *protocol.Response
}

func newResponseCollector() *responseCollector {
	return &responseCollector{
		ch: make(chan *protocol.Response, 16),
	}
}

func (c *responseCollector) respond(resp *protocol.Response) {
	c.mu.Lock()
	c.responses = append(c.responses, resp)
	c.mu.Unlock()
	c.ch <- resp
}

func (c *responseCollector) wait(t *testing.T, timeout time.Duration) *protocol.Response {
	t.Helper()
	select {
	case resp := <-c.ch:
		return resp
	case <-time.After(timeout):
		t.Fatal("Timed out waiting for response")
		return nil
	}
}

func (c *responseCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.responses)
}

func newTestDispatcher(t *testing.T, defaultTimeout time.Duration) (*Dispatcher, *registry.Registry) {
	t.Helper()
	reg := registry.NewRegistry()
	return NewDispatcher(reg, defaultTimeout), reg
}

func cmd(id, typ string, params map[string]interface{}) *protocol.Command {
	if params == nil {
		params = map[string]interface{}{}
	}
	return &protocol.Command{CommandID: id, Type: typ, Params: params}
}

func TestDispatchSuccess(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Second)
	reg.RegisterFunc("echo", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return params["value"], nil
	})

	col := newResponseCollector()
	if err := d.Dispatch(context.Background(), cmd("c1", "echo", map[string]interface{}{"value": "hi"}), col.respond); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	resp := col.wait(t, time.Second)
	if !resp.Success {
		t.Fatalf("Expected success, got error %v", resp.Error)
	}
	if resp.CommandID != "c1" {
		t.Errorf("Expected command_id c1, got %s", resp.CommandID)
	}
	if resp.Result != "hi" {
		t.Errorf("Expected result hi, got %v", resp.Result)
	}
	if resp.Timestamp == 0 {
		t.Error("Expected non-zero timestamp")
	}
}

func TestDispatchHandlerError(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Second)
	reg.RegisterFunc("fail", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return nil, errors.New("element not found")
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c2", "fail", nil), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Success {
		t.Fatal("Expected failure response")
	}
	if resp.Error == nil || *resp.Error != "element not found" {
		t.Errorf("Expected handler error message, got %v", resp.Error)
	}
	if resp.Result != nil {
		t.Errorf("Expected nil result on failure, got %v", resp.Result)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	d, _ := newTestDispatcher(t, time.Second)

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c3", "no_such_command", nil), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Success {
		t.Fatal("Expected failure response")
	}
	// 错误信息必须包含未知的命令类型，便于对端排查
	if resp.Error == nil || !strings.Contains(*resp.Error, "no_such_command") {
		t.Errorf("Expected error to contain command type, got %v", resp.Error)
	}
	if resp.Kind != protocol.ErrorKindUnknownType {
		t.Errorf("Expected kind %s, got %s", protocol.ErrorKindUnknownType, resp.Kind)
	}
}

func TestDispatchMissingType(t *testing.T) {
	d, _ := newTestDispatcher(t, time.Second)

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c4", "", nil), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Success {
		t.Fatal("Expected failure response")
	}
	if resp.Kind != protocol.ErrorKindInvalidCommand {
		t.Errorf("Expected kind %s, got %s", protocol.ErrorKindInvalidCommand, resp.Kind)
	}
}

func TestDispatchMissingCommandID(t *testing.T) {
	d, _ := newTestDispatcher(t, time.Second)

	// command_id缺失时无处可回复，命令被丢弃且不会产生响应
	col := newResponseCollector()
	if err := d.Dispatch(context.Background(), cmd("", "echo", nil), col.respond); err == nil {
		t.Fatal("Expected error for missing command_id")
	}

	time.Sleep(50 * time.Millisecond)
	if col.count() != 0 {
		t.Errorf("Expected no responses, got %d", col.count())
	}
}

func TestDispatchTimeout(t *testing.T) {
	d, reg := newTestDispatcher(t, 50*time.Millisecond)
	release := make(chan struct{})
	reg.RegisterFunc("slow", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-release
		return "late", nil
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c5", "slow", nil), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Success {
		t.Fatal("Expected timeout response")
	}
	if resp.Kind != protocol.ErrorKindTimeout {
		t.Errorf("Expected kind %s, got %s", protocol.ErrorKindTimeout, resp.Kind)
	}
	if resp.Error == nil || *resp.Error != "Command timeout after 50ms" {
		t.Errorf("Expected timeout message, got %v", resp.Error)
	}

	// 释放处理器：迟到的结果必须被丢弃，不产生第二条响应
	close(release)
	time.Sleep(100 * time.Millisecond)
	if col.count() != 1 {
		t.Errorf("Expected exactly 1 response, got %d", col.count())
	}

	stats := d.Stats()
	if stats.TimedOut != 1 {
		t.Errorf("Expected 1 timed out, got %d", stats.TimedOut)
	}
	if stats.Inflight != 0 {
		t.Errorf("Expected 0 inflight, got %d", stats.Inflight)
	}
}

func TestDispatchPerCommandTimeout(t *testing.T) {
	// params.timeout（毫秒）覆盖默认超时
	d, reg := newTestDispatcher(t, time.Hour)
	reg.RegisterFunc("slow", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c6", "slow", map[string]interface{}{"timeout": float64(30)}), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Kind != protocol.ErrorKindTimeout {
		t.Fatalf("Expected timeout, got %v", resp.Error)
	}
	if *resp.Error != "Command timeout after 30ms" {
		t.Errorf("Expected 30ms timeout message, got %s", *resp.Error)
	}
}

func TestDispatchPanicIsolation(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Second)
	reg.RegisterFunc("boom", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		panic("handler exploded")
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("c7", "boom", nil), col.respond)

	resp := col.wait(t, time.Second)
	if resp.Success {
		t.Fatal("Expected failure response")
	}
	if resp.Kind != protocol.ErrorKindHandler {
		t.Errorf("Expected kind %s, got %s", protocol.ErrorKindHandler, resp.Kind)
	}
	if !strings.Contains(*resp.Error, "handler exploded") {
		t.Errorf("Expected panic message, got %s", *resp.Error)
	}
}

func TestDispatchDuplicateCommandID(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Second)
	release := make(chan struct{})
	reg.RegisterFunc("slow", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-release
		return "first", nil
	})

	col := newResponseCollector()
	if err := d.Dispatch(context.Background(), cmd("dup", "slow", nil), col.respond); err != nil {
		t.Fatalf("First dispatch failed: %v", err)
	}

	// 同一command_id在途期间再次下发：后到者丢弃，响应权属于先到的命令
	if err := d.Dispatch(context.Background(), cmd("dup", "slow", nil), col.respond); err == nil {
		t.Fatal("Expected error for duplicate command_id")
	}

	close(release)
	resp := col.wait(t, time.Second)
	if !resp.Success || resp.Result != "first" {
		t.Errorf("Expected first command result, got %v", resp.Result)
	}

	time.Sleep(50 * time.Millisecond)
	if col.count() != 1 {
		t.Errorf("Expected exactly 1 response, got %d", col.count())
	}
}

func TestDispatchConcurrentIndependence(t *testing.T) {
	// 慢命令不阻塞快命令：分发器对每条命令独立执行
	d, reg := newTestDispatcher(t, time.Second)
	release := make(chan struct{})
	reg.RegisterFunc("slow", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-release
		return "slow", nil
	})
	reg.RegisterFunc("fast", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		return "fast", nil
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("s1", "slow", nil), col.respond)
	d.Dispatch(context.Background(), cmd("f1", "fast", nil), col.respond)

	// 快命令先返回
	resp := col.wait(t, time.Second)
	if resp.CommandID != "f1" {
		t.Fatalf("Expected fast command to finish first, got %s", resp.CommandID)
	}

	close(release)
	resp = col.wait(t, time.Second)
	if resp.CommandID != "s1" {
		t.Errorf("Expected slow command, got %s", resp.CommandID)
	}
}

func TestAbortAll(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Hour)
	reg.RegisterFunc("hang", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("a1", "hang", nil), col.respond)
	d.Dispatch(context.Background(), cmd("a2", "hang", nil), col.respond)

	n := d.AbortAll("transport error: backend connection lost")
	if n != 2 {
		t.Fatalf("Expected 2 aborted, got %d", n)
	}

	for i := 0; i < 2; i++ {
		resp := col.wait(t, time.Second)
		if resp.Success {
			t.Fatal("Expected failure response")
		}
		if resp.Kind != protocol.ErrorKindTransport {
			t.Errorf("Expected kind %s, got %s", protocol.ErrorKindTransport, resp.Kind)
		}
	}

	// 被中止的处理器迟到的错误结果不产生第二条响应
	time.Sleep(100 * time.Millisecond)
	if col.count() != 2 {
		t.Errorf("Expected exactly 2 responses, got %d", col.count())
	}

	if d.Stats().Inflight != 0 {
		t.Errorf("Expected 0 inflight after abort, got %d", d.Stats().Inflight)
	}
}

func TestInflightSnapshot(t *testing.T) {
	d, reg := newTestDispatcher(t, time.Hour)
	release := make(chan struct{})
	reg.RegisterFunc("hang", func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		<-release
		return nil, nil
	})

	col := newResponseCollector()
	d.Dispatch(context.Background(), cmd("i1", "hang", nil), col.respond)

	infos := d.Inflight()
	if len(infos) != 1 {
		t.Fatalf("Expected 1 inflight, got %d", len(infos))
	}
	if infos[0].CommandID != "i1" || infos[0].Type != "hang" {
		t.Errorf("Unexpected inflight info: %+v", infos[0])
	}

	close(release)
	col.wait(t, time.Second)

	if len(d.Inflight()) != 0 {
		t.Error("Expected empty inflight after completion")
	}
}
