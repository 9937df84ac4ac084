package serv

import (
	"net/http"
)

type healthResp struct {
	Status  string `json:"status"`
	Rows    int    `json:"rows"`
	Version int64  `json:"version"`
}

func (s *Service) healthV1(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, healthResp{
		Status:  "ok",
		Rows:    s.hdb.Rows(),
		Version: s.hdb.Version(),
	})
}
