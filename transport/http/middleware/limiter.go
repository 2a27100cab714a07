package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	"roombook/transport/http/response"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"
	apiVersionPrefix  = "/v1/"
	resourceOther     = "other"
)

// RateLimit counts requests per client address and resource in fixed windows, so a burst of
// booking requests from one client does not also lock it out of the room list.
// A cache outage lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			maxReqs := a.config.App.RateLimiter.MaxRequests
			windowSecs := a.config.App.RateLimiter.WindowSeconds
			clientIP := clientAddress(r)
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, resourceOf(r.URL.Path), clientIP)

			var count int
			if err := a.cache.Get(r.Context(), cacheKey, &count); err != nil {
				if !errors.Is(err, cache.Nil) {
					log.Warn().Err(err).Str("client_ip", clientIP).Msg("rate limiter unavailable, allowing request")
					next.ServeHTTP(w, r)

					return
				}
			}

			count++
			if count > maxReqs {
				log.Info().Str("client_ip", clientIP).Str("path", r.URL.Path).Msg("rate limit exceeded")
				response.WithRequestLimitExceeded(w)

				return
			}

			if err := a.cache.Save(r.Context(), cacheKey, count, windowSecs); err != nil {
				log.Warn().Err(err).Str("client_ip", clientIP).Msg("failed to record request count")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(maxReqs))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, maxReqs-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(windowSecs))

			next.ServeHTTP(w, r)
		})
	}
}

// resourceOf maps "/v1/bookings/JGU12345/receipt" to "bookings".
func resourceOf(path string) string {
	rest, ok := strings.CutPrefix(path, apiVersionPrefix)
	if !ok {
		return resourceOther
	}

	resource, _, _ := strings.Cut(rest, "/")
	if resource == constant.Empty {
		return resourceOther
	}

	return resource
}

// clientAddress prefers the first proxy hop, then X-Real-IP, then the socket address without its port.
func clientAddress(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != constant.Empty {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != constant.Empty {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get(constant.RequestHeaderRealIP)); xri != constant.Empty {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
