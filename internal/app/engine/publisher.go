package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/volttrace/volttrace/internal/domain"
	"github.com/volttrace/volttrace/internal/ports"
)

// Publisher formats readings as flat JSON messages and pushes them to the
// broker. Every publish has a bounded retry budget; when it is exhausted the
// message is abandoned for this tick and reported, never buffered. The day
// file is the durable record, the broker is a best-effort live mirror.
type Publisher struct {
	session   ports.BrokerSession
	topicBase string
	pol       ports.Policy
	obs       ports.Observability

	sleep func(time.Duration)
}

type samplePayload struct {
	Timestamp string  `json:"timestamp"`
	Current   float64 `json:"current"`
	Voltage   float64 `json:"voltage"`
}

type statusPayload struct {
	Status string `json:"status"`
	IP     string `json:"ip"`
}

type backlogPayload struct {
	File   string `json:"file"`
	Date   string `json:"date"`
	Metric string `json:"metric"`
	Line   int    `json:"line"`
	Data   string `json:"data"`
}

func NewPublisher(session ports.BrokerSession, topicBase string, pol ports.Policy, obs ports.Observability) *Publisher {
	if pol.PublishAttempts <= 0 {
		pol.PublishAttempts = 3
	}
	return &Publisher{
		session:   session,
		topicBase: topicBase,
		pol:       pol,
		obs:       obs,
		sleep:     time.Sleep,
	}
}

// PublishReading mirrors one reading to the current and voltage topics. A
// topic that exhausts its retries is abandoned; the other topic still gets
// its attempt.
func (p *Publisher) PublishReading(r domain.Reading) error {
	payload, err := json.Marshal(samplePayload{
		Timestamp: r.TakenAt.Format(domain.StampLayout),
		Current:   r.Current,
		Voltage:   r.Voltage,
	})
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	var errs []error
	for _, suffix := range []string{"current", "voltage"} {
		if err := p.publishBounded(p.topicBase+"/"+suffix, payload, false); err != nil {
			p.obs.IncCounter("volttrace_publish_failures_total", 1)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishStatus sets the retained status message ("online"/"offline" plus
// the current address). The broker holds it for late subscribers.
func (p *Publisher) PublishStatus(status, ip string) error {
	payload := StatusPayload(status, ip)
	if err := p.publishBounded(p.topicBase+"/status", payload, true); err != nil {
		p.obs.IncCounter("volttrace_publish_failures_total", 1)
		return err
	}
	return nil
}

// PublishBacklogLine republishes one stored log line during a parked-mode
// catch-up, tagged with its source file, date, metric, and line index.
func (p *Publisher) PublishBacklogLine(file, date, metric string, line int, data string) error {
	payload, err := json.Marshal(backlogPayload{
		File:   file,
		Date:   date,
		Metric: metric,
		Line:   line,
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("marshal backlog line: %w", err)
	}
	return p.publishBounded(p.topicBase+"/backlog", payload, false)
}

// StatusPayload builds the status message; also used for the broker
// last-will so an ungraceful disconnect reports "offline" automatically.
func StatusPayload(status, ip string) []byte {
	payload, _ := json.Marshal(statusPayload{Status: status, IP: ip})
	return payload
}

// publishBounded tries a publish up to PublishAttempts times with a short
// fixed delay, interleaving a keepalive before each retry so a dead session
// fails fast instead of burning the whole budget.
func (p *Publisher) publishBounded(topic string, payload []byte, retain bool) error {
	var last error
	for attempt := 1; attempt <= p.pol.PublishAttempts; attempt++ {
		if attempt > 1 {
			if err := p.session.Ping(); err != nil {
				last = err
				break
			}
			p.sleep(p.pol.PublishRetryDelay)
		}
		if err := p.session.Publish(topic, payload, retain); err != nil {
			last = err
			continue
		}
		return nil
	}
	return fmt.Errorf("publish %s abandoned after %d attempts: %w", topic, p.pol.PublishAttempts, last)
}

var _ ports.SamplePublisher = (*Publisher)(nil)
