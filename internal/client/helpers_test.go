package client

import (
	"encoding/json"
	"net/http"
)

func decodeBody(req *http.Request, out any) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(out)
}
