// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Slade66/observable-monitor/internal/client"
	"github.com/Slade66/observable-monitor/internal/logging"
	"github.com/Slade66/observable-monitor/internal/monitor"
	"github.com/Slade66/observable-monitor/internal/observer"
	"github.com/Slade66/observable-monitor/internal/session"
	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. 参数解析
	initial := flag.Float64("initial", monitor.DefaultTemperature, "初始温度")
	threshold := flag.Float64("threshold", observer.DefaultAlarmThreshold, "告警阈值")
	valuesStr := flag.String("values", "28,28,32", "依次设置的温度，逗号分隔")
	remove := flag.String("remove", "Kitchen Screen", "在最后一次设置之前移除的显示屏名称 (为空则不移除)")
	after := flag.Float64("after", 29, "移除显示屏之后设置的温度")
	webhook := flag.String("webhook", "", "可选的 webhook URL，每次变化都会 POST 过去")
	probe := flag.String("probe", "", "可选的 URL，用可观察的 HTTP 会话请求一次并打印请求/响应事件")
	slow := flag.Duration("slow", session.DefaultSlowThreshold, "慢响应阈值")
	logLevel := flag.String("log_level", "info", "日志级别")
	flag.Parse()

	if err := logging.Init(logging.Options{Level: *logLevel}); err != nil {
		fmt.Println("错误:", err)
		os.Exit(1)
	}

	// 2. 参数校验
	values, err := parseValues(*valuesStr)
	if err != nil {
		log.Fatalf("❌ 无法解析 -values: %v", err)
	}

	// 3. 创建温度计和观察者
	thermometer := monitor.NewTemperatureMonitor(*initial)
	displays := []*observer.DisplayObserver{
		observer.NewDisplayObserver("Living Room Screen", os.Stdout),
		observer.NewDisplayObserver("Kitchen Screen", os.Stdout),
	}
	fmt.Println("👥 Subscribing observers to the temperature monitor")
	for _, d := range displays {
		thermometer.AddObserver(d)
	}
	thermometer.AddObserver(observer.NewLogObserver(nil))
	thermometer.AddObserver(observer.NewAlarmObserver(*threshold, nil))
	thermometer.AddObserver(observer.NewGaugeObserver(0, 50, os.Stdout))
	if *webhook != "" {
		thermometer.AddObserver(observer.NewWebhookObserver(*webhook, client.GetClient()))
	}
	fmt.Printf("✅ Total observers: %d\n", thermometer.Len())

	// 4. 依次改变温度
	for i, v := range values {
		fmt.Printf("\n--- Temperature change #%d: %v°C ---\n", i+1, v)
		setTemperature(thermometer, v)
	}

	// 5. 动态移除观察者
	if *remove != "" {
		for _, d := range displays {
			if d.Name() == *remove {
				fmt.Printf("\n--- Removing %s ---\n", d.Name())
				thermometer.RemoveObserver(d)
			}
		}
		fmt.Printf("✅ Remaining observers: %d\n", thermometer.Len())
	}
	fmt.Printf("\n--- Temperature change after removing an observer: %v°C ---\n", *after)
	setTemperature(thermometer, *after)

	if *probe != "" {
		fmt.Printf("\n--- Probing %s ---\n", *probe)
		probeURL(*probe, *slow)
	}
}

// probeURL 通过可观察的 HTTP 会话请求一次 URL
func probeURL(url string, slowThreshold time.Duration) {
	s := session.New(client.GetClient(), session.WithSlowThreshold(slowThreshold))
	s.AddObserver(session.NewPrintObserver(os.Stdout))
	s.AddObserver(session.NewSlowResponseObserver())

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	defer cancel()
	resp, err := s.Get(ctx, url)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}

func setTemperature(m *monitor.TemperatureMonitor, v float64) {
	if err := m.SetTemperature(v); err != nil {
		log.Errorf("❌ 部分观察者处理失败: %v", err)
	}
}

// parseValues 解析逗号分隔的温度列表
func parseValues(s string) ([]float64, error) {
	var values []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("无效的温度 %q: %w", part, err)
		}
		values = append(values, v)
	}
	return values, nil
}
