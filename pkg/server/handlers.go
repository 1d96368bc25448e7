package server

import (
	"context"
	"net/http"

	"formation-hq/timeline/pkg/telemetry/logging"
	"formation-hq/timeline/pkg/timeline"
	"formation-hq/timeline/pkg/timeline/reconcile"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p timeline.RetentionPolicy
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, r, &badRequestError{err: err})
		return
	}
	p.ID = timeline.NoID

	created, err := s.deps.Store.Create(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "policy created", "policy_id", int64(created.ID), "name", created.Name)
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var p timeline.RetentionPolicy
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !p.HasID() {
		s.writeError(w, r, badRequest("policy id is required"))
		return
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, r, &badRequestError{err: err})
		return
	}

	if err := s.deps.Store.Edit(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	policies, err := s.deps.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(policies))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathPolicyID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	s.handleAttachment(w, r, s.deps.Store.Attach)
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	s.handleAttachment(w, r, s.deps.Store.Detach)
}

type attachmentFunc func(ctx context.Context, id timeline.PolicyID, volume timeline.VolumeID) error

func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request, op attachmentFunc) {
	id, err := pathPolicyID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	volume, err := pathVolume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := op(r.Context(), id, volume); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAttached(w http.ResponseWriter, r *http.Request) {
	volume, err := pathVolume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	policies, err := s.deps.Store.ListAttached(r.Context(), volume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(policies))
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	volume, err := pathVolume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx := logging.WithVolume(r.Context(), string(volume))

	res, err := s.deps.Reconciler.Release(ctx, volume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report())
}

func (s *Server) handleVolumePreset(w http.ResponseWriter, r *http.Request) {
	volume, err := pathVolume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	policies, err := s.deps.Store.ListAttached(r.Context(), volume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMatch(w, policies)
}

// reconcileRequest is the body of a reconcile call. Preset, when set,
// replaces Desired with the template's rules. Omitting Current in edit mode
// reads the attached policies from the store.
type reconcileRequest struct {
	Mode    string                     `json:"mode"`
	Preset  string                     `json:"preset,omitempty"`
	DryRun  bool                       `json:"dry_run,omitempty"`
	Current []timeline.RetentionPolicy `json:"current,omitempty"`
	Desired []timeline.DesiredPolicy   `json:"desired"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	volume, err := pathVolume(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body reconcileRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, err := reconcile.ParseMode(body.Mode)
	if err != nil {
		s.writeError(w, r, &badRequestError{err: err})
		return
	}

	desired := body.Desired
	if body.Preset != "" {
		desired, err = s.deps.Presets.Current().Desired(body.Preset)
		if err != nil {
			s.writeError(w, r, badRequest("%v", err))
			return
		}
	}

	ctx := logging.WithVolume(r.Context(), string(volume))
	req := reconcile.Request{VolumeID: volume, Mode: mode, Current: body.Current, Desired: desired}

	if body.DryRun {
		plan, err := s.deps.Reconciler.Plan(ctx, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reconcile.Report{VolumeID: string(volume), Mode: mode, Plan: plan, Outcomes: []reconcile.OutcomeReport{}})
		return
	}

	res, err := s.deps.Reconciler.Reconcile(ctx, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Report())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Presets.Current().Templates())
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var policies []timeline.RetentionPolicy
	if err := decodeJSON(r, &policies); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMatch(w, policies)
}

func (s *Server) writeMatch(w http.ResponseWriter, policies []timeline.RetentionPolicy) {
	tmpl := s.deps.Presets.Current().Match(policies)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordPresetMatch(tmpl.Label)
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func nonNil(ps []timeline.RetentionPolicy) []timeline.RetentionPolicy {
	if ps == nil {
		return []timeline.RetentionPolicy{}
	}
	return ps
}
