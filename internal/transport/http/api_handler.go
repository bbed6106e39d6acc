package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kidlingo-service/internal/app"
	"kidlingo-service/internal/auth"
	"kidlingo-service/internal/client"
	"kidlingo-service/internal/domain"
	"kidlingo-service/internal/quiz"

	"go.uber.org/zap"
)

// APIHandler exposes the learning operations and the request/response play flow as JSON.
type APIHandler struct {
	service *app.QuizService
	log     *zap.Logger
}

func NewAPIHandler(service *app.QuizService, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{service: service, log: log}
}

// Register mounts every API route on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", h.categories)
	mux.HandleFunc("GET /api/words/{category}", h.words)
	mux.HandleFunc("GET /api/profile", h.profile)
	mux.HandleFunc("PUT /api/profile", h.saveProfile)
	mux.HandleFunc("GET /api/role", h.role)
	mux.HandleFunc("GET /api/progress", h.progress)
	mux.HandleFunc("GET /api/rewards", h.rewards)
	mux.HandleFunc("GET /api/dashboard", h.dashboard)
	mux.HandleFunc("GET /api/users/{principal}/profile", h.userProfile)
	mux.HandleFunc("GET /api/users/{principal}/progress", h.userProgress)
	mux.HandleFunc("GET /api/users/{principal}/rewards", h.userRewards)
	mux.HandleFunc("PUT /api/users/{principal}/role", h.assignRole)
	mux.HandleFunc("POST /api/users/{principal}/rewards", h.awardReward)
	mux.HandleFunc("POST /api/quiz/check", h.checkAnswer)
	mux.HandleFunc("POST /api/lessons/complete", h.completeLesson)
	mux.HandleFunc("POST /api/vocabulary/initialize", h.initializeVocabulary)

	mux.HandleFunc("POST /api/quiz/{category}", h.startQuiz)
	mux.HandleFunc("POST /api/quiz/sessions/{id}/answers", h.submitAnswer)
	mux.HandleFunc("POST /api/quiz/sessions/{id}/ack", h.acknowledge)
	mux.HandleFunc("GET /api/quiz/sessions/{id}/result", h.result)
	mux.HandleFunc("DELETE /api/quiz/sessions/{id}", h.abandon)
}

func (h *APIHandler) categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.client(r).Categories(r.Context()))
}

func (h *APIHandler) words(w http.ResponseWriter, r *http.Request) {
	words, err := h.client(r).WordsByCategory(r.Context(), r.PathValue("category"))
	h.reply(w, r, words, err)
}

func (h *APIHandler) profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.client(r).Profile(r.Context())
	h.reply(w, r, p, err)
}

func (h *APIHandler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.UserProfile
	if !h.decode(w, r, &p) {
		return
	}
	h.reply(w, r, nil, h.client(r).SaveProfile(r.Context(), p))
}

func (h *APIHandler) role(w http.ResponseWriter, r *http.Request) {
	role, err := h.client(r).Role(r.Context())
	h.reply(w, r, map[string]domain.UserRole{"role": role}, err)
}

func (h *APIHandler) progress(w http.ResponseWriter, r *http.Request) {
	p, err := h.client(r).Progress(r.Context())
	h.reply(w, r, p, err)
}

func (h *APIHandler) rewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.client(r).Rewards(r.Context())
	h.reply(w, r, rewards, err)
}

func (h *APIHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.client(r).Dashboard(r.Context())
	h.reply(w, r, d, err)
}

func (h *APIHandler) userProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.client(r).UserProfile(r.Context(), r.PathValue("principal"))
	h.reply(w, r, p, err)
}

func (h *APIHandler) userProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.client(r).UserProgress(r.Context(), r.PathValue("principal"))
	h.reply(w, r, p, err)
}

func (h *APIHandler) userRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.client(r).UserRewards(r.Context(), r.PathValue("principal"))
	h.reply(w, r, rewards, err)
}

func (h *APIHandler) assignRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role domain.UserRole `json:"role"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.reply(w, r, nil, h.client(r).AssignRole(r.Context(), r.PathValue("principal"), body.Role))
}

func (h *APIHandler) awardReward(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reward domain.Reward `json:"reward"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.reply(w, r, nil, h.client(r).AwardReward(r.Context(), r.PathValue("principal"), body.Reward))
}

func (h *APIHandler) checkAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Word        string `json:"word"`
		Translation string `json:"translation"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	ok, err := h.client(r).CheckQuizAnswer(r.Context(), body.Word, body.Translation)
	h.reply(w, r, map[string]bool{"correct": ok}, err)
}

func (h *APIHandler) completeLesson(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Score int `json:"score"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	h.reply(w, r, nil, h.client(r).CompleteLesson(r.Context(), body.Score))
}

func (h *APIHandler) initializeVocabulary(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, nil, h.client(r).InitializeVocabulary(r.Context()))
}

func (h *APIHandler) startQuiz(w http.ResponseWriter, r *http.Request) {
	caller := auth.FromContext(r.Context())
	category := r.PathValue("category")
	session, err := h.service.Start(r.Context(), caller, category)
	if errors.Is(err, domain.ErrNoWords) {
		writeJSON(w, http.StatusOK, emptyView{Empty: true, Category: category})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q, idx, _ := session.Current()
	st := session.Snapshot()
	writeJSON(w, http.StatusCreated, struct {
		startedView
		Question questionView `json:"question"`
	}{newStartedView(session, caller), newQuestionView(q, idx, st.Total)})
}

func (h *APIHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerPayload
	if !h.decode(w, r, &body) {
		return
	}
	outcome, err := h.service.Submit(r.Context(), auth.FromContext(r.Context()), r.PathValue("id"), body.Option)
	h.reply(w, r, newAnswerView(outcome), err)
}

func (h *APIHandler) acknowledge(w http.ResponseWriter, r *http.Request) {
	caller := auth.FromContext(r.Context())
	id := r.PathValue("id")
	q, ok, err := h.service.Acknowledge(caller, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	session, err := h.service.Session(caller, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st := session.Snapshot()
	resp := struct {
		State    quiz.State    `json:"state"`
		Question *questionView `json:"question,omitempty"`
	}{State: st}
	if ok {
		v := newQuestionView(q, st.Index, st.Total)
		resp.Question = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) result(w http.ResponseWriter, r *http.Request) {
	res, ok, err := h.service.Result(auth.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, errorPayload{Message: "quiz still running"})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *APIHandler) abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Abandon(auth.FromContext(r.Context()), r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) client(r *http.Request) *client.Client {
	return h.service.Client(auth.FromContext(r.Context()))
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return false
	}
	return true
}

// reply writes body on success, 204 when body is nil.
func (h *APIHandler) reply(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorPayload{Message: messageFor(err, status)})
}
