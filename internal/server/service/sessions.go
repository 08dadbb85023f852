// Пакет service — состояние HTTP API между запросами.
// SessionCache — LRU-кэш сессий переименования с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ilkoid/airename/pkg/config"
	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/utils"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airename_session_cache_hits_total",
		Help: "Total number of session cache hits",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airename_session_cache_misses_total",
		Help: "Total number of session cache misses",
	})
	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airename_sessions_evicted_total",
		Help: "Sessions removed from the cache by TTL or size limit",
	})
)

// Run — сессия вместе с флагом паузы её пакета.
type Run struct {
	Session *session.Session
	Token   *session.PauseToken
}

// SessionCache хранит сессии в памяти процесса.
// Вытесненная сессия получает паузу: её пакет остановится перед следующим файлом.
type SessionCache struct {
	cache *expirable.LRU[string, *Run]
}

// NewSessionCache создаёт кэш по секции session конфига.
func NewSessionCache(cfg config.SessionConfig) *SessionCache {
	cfg = cfg.GetDefaults()

	onEvict := func(id string, run *Run) {
		run.Token.Pause()
		sessionsEvictedTotal.Inc()
		utils.Debug("Session evicted", "session", id)
	}

	return &SessionCache{
		cache: expirable.NewLRU[string, *Run](cfg.MaxActive, onEvict, cfg.TTL),
	}
}

// Add кладёт новую сессию в кэш.
func (c *SessionCache) Add(sess *session.Session) *Run {
	run := &Run{Session: sess, Token: session.NewPauseToken()}
	c.cache.Add(sess.ID(), run)
	return run
}

// Get возвращает сессию по id.
// Обновляет Prometheus-метрики hit/miss.
func (c *SessionCache) Get(id string) (*Run, bool) {
	run, ok := c.cache.Get(id)
	if ok {
		cacheHitsTotal.Inc()
		return run, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Delete удаляет сессию.
func (c *SessionCache) Delete(id string) {
	c.cache.Remove(id)
}

// Len возвращает число живых сессий.
func (c *SessionCache) Len() int {
	return c.cache.Len()
}
