package mid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jcpaschoal/propman/business/sdk/web"
	"github.com/jcpaschoal/propman/foundation/logger"
)

// Logger writes information about the request to the logs.
func Logger(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = fmt.Sprintf("%s?%s", path, r.URL.RawQuery)
			}

			log.Info(ctx, "request started", "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)
			err := checkIsError(resp)

			var statusCode = http.StatusOK
			if err != nil {
				statusCode = http.StatusInternalServerError

				if v, ok := resp.(interface{ HTTPStatus() int }); ok {
					statusCode = v.HTTPStatus()
				}
			}

			log.Info(ctx, "request completed", "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr,
				"statuscode", statusCode, "since", time.Since(now).String())

			return resp
		}

		return h
	}

	return m
}
