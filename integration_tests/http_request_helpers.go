package integration

import (
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/gomega"
)

func newRequest(method, url string) *http.Request {
	req, err := http.NewRequest(method, url, nil)
	Expect(err).NotTo(HaveOccurred())
	return req
}

func doRequest(req *http.Request) *http.Response {
	resp, err := http.DefaultTransport.RoundTrip(req)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func routerRequest(url string) *http.Response {
	return doRequest(newRequest(http.MethodGet, url))
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	bytes, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return string(bytes)
}

func readEcho(resp *http.Response) echoedRequest {
	var echo echoedRequest
	Expect(json.Unmarshal([]byte(readBody(resp)), &echo)).To(Succeed())
	return echo
}
