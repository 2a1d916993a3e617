package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/optimatax/reliefdesk/pkg/utils/errutil"
	"github.com/optimatax/reliefdesk/pkg/utils/safe"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files
const multipartMemory = 8 << 20

type rejectRequest struct {
	Reason string `json:"reason"`
}

func documentIDParam(r *http.Request) model.DocumentID {
	return model.DocumentID(chi.URLParam(r, "documentID"))
}

// uploadDocumentHandler accepts a multipart form with a "file" part and the
// "documentType" and optional "caseId" fields
func (s *Server) uploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(r.Context(), w, invalidInput(err, "malformed multipart form"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			errutil.Handle(r.Context(), goerr.Wrap(err, "failed to remove multipart files"), "cleanup failed")
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(r.Context(), w, invalidInput(err, "file part is required"))
		return
	}
	defer safe.Close(r.Context(), file)

	doc, err := s.uc.Document.Upload(r.Context(), actor, usecase.UploadInput{
		CaseID:      model.CaseID(r.FormValue("caseId")),
		Type:        types.DocumentType(r.FormValue("documentType")),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toDocumentResponse(doc))
}

func (s *Server) listDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	docs, err := s.uc.Document.ListMine(r.Context(), actor)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponses(docs))
}

func (s *Server) getDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	doc, err := s.uc.Document.GetDocument(r.Context(), actor, documentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) documentURLHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	url, expiresAt, err := s.uc.Document.DownloadURL(r.Context(), actor, documentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, downloadURLResponse{URL: url, ExpiresAt: expiresAt})
}

func (s *Server) verifyDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	doc, err := s.uc.Document.Verify(r.Context(), actor, documentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) rejectDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	var req rejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	doc, err := s.uc.Document.Reject(r.Context(), actor, documentIDParam(r), req.Reason)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponse(doc))
}

func (s *Server) deleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	doc, err := s.uc.Document.Delete(r.Context(), actor, documentIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toDocumentResponse(doc))
}
