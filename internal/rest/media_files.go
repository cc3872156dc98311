package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func (s *Server) getMediaFilesHandler(res http.ResponseWriter, req *http.Request) {
	out, err := json.Marshal(s.statesRepository.MediaFiles())
	if err != nil {
		res.WriteHeader(500)
		res.Write([]byte(fmt.Sprintf("could not marshal media files state to JSON: %s\n", err)))

		return
	}

	res.WriteHeader(200)
	res.Write(out)
}
