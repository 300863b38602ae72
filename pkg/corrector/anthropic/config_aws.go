package anthropic

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// bedrockMiddleware rewrites Anthropic API requests into the Bedrock
// invoke shape when the service runs behind a bearer token instead of
// SigV4 credentials. Correction calls never stream, so only the plain
// invoke endpoint is handled.
func bedrockMiddleware(token string) option.Middleware {
	return func(r *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)

			if err != nil {
				return nil, err
			}

			r.Body.Close()

			if !gjson.GetBytes(body, "anthropic_version").Exists() {
				body, _ = sjson.SetBytes(body, "anthropic_version", bedrock.DefaultVersion)
			}

			if betaHeader := r.Header.Values("anthropic-beta"); len(betaHeader) > 0 {
				r.Header.Del("anthropic-beta")
				body, err = sjson.SetBytes(body, "anthropic_beta", betaHeader)

				if err != nil {
					return nil, err
				}
			}

			if r.Method == http.MethodPost && bedrock.DefaultEndpoints[r.URL.Path] {
				model := gjson.GetBytes(body, "model").String()

				body, _ = sjson.DeleteBytes(body, "model")
				body, _ = sjson.DeleteBytes(body, "stream")

				r.URL.Path = fmt.Sprintf("/model/%s/invoke", model)
				r.URL.RawPath = fmt.Sprintf("/model/%s/invoke", url.QueryEscape(model))
			}

			reader := bytes.NewReader(body)

			r.Body = io.NopCloser(reader)

			r.GetBody = func() (io.ReadCloser, error) {
				_, err := reader.Seek(0, 0)
				return io.NopCloser(reader), err
			}

			r.ContentLength = int64(len(body))
		}

		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}

		return next(r)
	}
}
