// Package rpcserver exposes the campaign decision engine over HTTP: one
// JSON endpoint per external event the host simulator reports
// (processjson, unitdestroyed, supportdestroyed, missionend, changescore).
package rpcserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/observer"
	"dyncserver/orchestrator"
	"dyncserver/services"
	"dyncserver/stats"
)

// Server routes the host simulator's reporting calls to the orchestrator,
// holding the single campaign the whole process manages.
type Server struct {
	campaign *campaign.Campaign
	services *services.Services
	stats    *stats.Store
	scores   *observer.ScoreGauge
}

// New builds a Server over an already-loaded campaign. scores may be nil
// if no observer hub is wired up; score publication is then skipped.
func New(c *campaign.Campaign, svc *services.Services, statStore *stats.Store, scores *observer.ScoreGauge) *Server {
	return &Server{campaign: c, services: svc, stats: statStore, scores: scores}
}

// Router builds the mux.Router exposing every endpoint.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/processjson", s.handleProcessJSON).Methods(http.MethodPost)
	r.HandleFunc("/unitdestroyed", s.handleUnitDestroyed).Methods(http.MethodPost)
	r.HandleFunc("/supportdestroyed", s.handleSupportDestroyed).Methods(http.MethodPost)
	r.HandleFunc("/missionend", s.handleMissionEnd).Methods(http.MethodPost)
	r.HandleFunc("/changescore", s.handleChangeScore).Methods(http.MethodPost)
	return r
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(errorResponse{Code: "1", Error: err.Error()})
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// processJSONRequest is the wire shape of a processjson request body.
type processJSONRequest struct {
	Routes   [][]string                   `json:"routes"`
	Units    map[string]unitWire          `json:"units"`
	Goals    map[string]string            `json:"goals"`
	Bullseye map[string]string            `json:"bullseye"`
	MapMarkers    []markerWire            `json:"mapmarkers"`
	CornerMarkers []markerWire            `json:"cornermarkers"`
}

type unitWire struct {
	Group     string `json:"group"`
	Pos       string `json:"pos"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Coalition string `json:"coalition"`
}

type markerWire struct {
	Name string `json:"name"`
	Pos  string `json:"pos"`
}

func (s *Server) handleProcessJSON(w http.ResponseWriter, r *http.Request) {
	var req processJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	units := make(map[string]orchestrator.UnitReport, len(req.Units))
	for name, u := range req.Units {
		units[name] = orchestrator.UnitReport{
			Group: u.Group, Pos: u.Pos, Type: u.Type, Category: u.Category, Coalition: u.Coalition,
		}
	}
	var mapMarkers, cornerMarkers []orchestrator.RawMarker
	for _, m := range req.MapMarkers {
		mapMarkers = append(mapMarkers, orchestrator.RawMarker{Name: m.Name, Pos: m.Pos})
	}
	for _, m := range req.CornerMarkers {
		cornerMarkers = append(cornerMarkers, orchestrator.RawMarker{Pos: m.Pos})
	}

	turnReq := orchestrator.TurnRequest{
		Routes:        req.Routes,
		Units:         units,
		GoalRed:       req.Goals["red"],
		GoalBlue:      req.Goals["blue"],
		BullseyeRed:   req.Bullseye["red"],
		BullseyeBlue:  req.Bullseye["blue"],
		MapMarkers:    mapMarkers,
		CornerMarkers: cornerMarkers,
	}

	s.campaign.Lock()
	defer s.campaign.Unlock()

	result, err := orchestrator.ProcessTurn(s.campaign, turnReq)
	if err != nil {
		s.services.Logger.Printf("processjson: %v", err)
		writeError(w, err)
		return
	}
	if err := s.services.Store.Save(s.campaign); err != nil {
		s.services.Logger.Printf("processjson: save snapshot: %v", err)
	}
	if s.scores != nil {
		red, blue := orchestrator.ComputeScores(s.campaign, s.scoringTable())
		s.scores.Publish(red, blue)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(turnResultToWire(result))
}

type turnResultWire struct {
	Code        string                                      `json:"code"`
	Stage       string                                      `json:"stage"`
	Destroyed   map[string]destroyedWire                     `json:"destroyed"`
	GroupsPos   map[string]string                            `json:"groupspos"`
	GroupsDest  map[string]string                            `json:"groupsdest"`
	AirDest     map[string]string                            `json:"airdest"`
	SupportPos  map[string]string                            `json:"supportpos"`
	SupportNum  map[string]string                            `json:"supportnum"`
	InfantryPos map[string][]infantryPosWire                  `json:"infantrypos"`
	DynGroups   map[string][]dynGroupWire                    `json:"dyngroups"`
}

type destroyedWire struct {
	Group string `json:"group"`
}

type infantryPosWire struct {
	Pos    string `json:"pos"`
	Number string `json:"number"`
}

type dynGroupUnitWire struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Skill string `json:"skill"`
	Pos   string `json:"pos"`
}

type dynGroupWire struct {
	Category string             `json:"category"`
	Name     string             `json:"name"`
	Units    []dynGroupUnitWire `json:"units"`
}

func turnResultToWire(r *orchestrator.TurnResult) turnResultWire {
	destroyed := make(map[string]destroyedWire, len(r.Destroyed))
	for unit, group := range r.Destroyed {
		destroyed[unit] = destroyedWire{Group: group}
	}

	infantryPos := make(map[string][]infantryPosWire)
	for coalition, positions := range r.InfantryPos {
		var wire []infantryPosWire
		for _, p := range positions {
			wire = append(wire, infantryPosWire{Pos: p.Pos, Number: itoa(p.Number)})
		}
		infantryPos[string(coalition)] = wire
	}

	dynGroups := make(map[string][]dynGroupWire)
	for coalition, groups := range r.DynGroups {
		var wire []dynGroupWire
		for _, g := range groups {
			gw := dynGroupWire{Category: g.Category, Name: g.Name}
			for _, u := range g.Units {
				gw.Units = append(gw.Units, dynGroupUnitWire{Name: u.Name, Type: u.Type, Skill: u.Skill, Pos: u.Pos})
			}
			wire = append(wire, gw)
		}
		dynGroups[string(coalition)] = wire
	}

	return turnResultWire{
		Code:      "0",
		Stage:     itoa(r.Stage),
		Destroyed: destroyed,
		GroupsPos: r.GroupsPos,
		GroupsDest: r.GroupsDest,
		AirDest: map[string]string{"red": r.AirDestRed, "blue": r.AirDestBlue},
		SupportPos: map[string]string{"red": r.SupportPosRed, "blue": r.SupportPosBlue},
		SupportNum: map[string]string{"red": itoa(r.SupportNumRed), "blue": itoa(r.SupportNumBlue)},
		InfantryPos: infantryPos,
		DynGroups:   dynGroups,
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

type unitDestroyedRequest struct {
	UnitName  string  `json:"unitname"`
	GroupName string  `json:"groupname"`
	Time      float64 `json:"time"`
}

func (s *Server) handleUnitDestroyed(w http.ResponseWriter, r *http.Request) {
	var req unitDestroyedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	s.campaign.Lock()
	defer s.campaign.Unlock()

	if err := orchestrator.UnitDestroyed(s.campaign, req.UnitName, req.GroupName, req.Time); err != nil {
		s.services.Logger.Printf("unitdestroyed: %v", err)
		writeError(w, err)
		return
	}
	if err := s.services.Store.Save(s.campaign); err != nil {
		s.services.Logger.Printf("unitdestroyed: save snapshot: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
}

type supportDestroyedRequest struct {
	Coalition string `json:"coalition"`
}

func (s *Server) handleSupportDestroyed(w http.ResponseWriter, r *http.Request) {
	var req supportDestroyedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	s.campaign.Lock()
	remaining, destroyed := orchestrator.SupportDestroyed(s.campaign, model.Coalition(req.Coalition))
	s.campaign.Unlock()

	if destroyed {
		s.services.Logger.Printf("support for coalition %s now considered destroyed", req.Coalition)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"remaining": itoa(remaining)})
}

type changeScoreRequest struct {
	Reason    string `json:"reason"`
	Coalition string `json:"coalition"`
	UnitName  string `json:"unitname"`
}

func (s *Server) handleChangeScore(w http.ResponseWriter, r *http.Request) {
	var req changeScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	s.campaign.Lock()
	red, blue, err := orchestrator.ChangeScore(s.campaign, s.scoringTable(), orchestrator.ScoreReason(req.Reason),
		model.Coalition(req.Coalition), req.UnitName)
	var fullRed, fullBlue float64
	if err == nil && s.scores != nil {
		fullRed, fullBlue = orchestrator.ComputeScores(s.campaign, s.scoringTable())
	}
	s.campaign.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	if s.scores != nil {
		s.scores.Publish(fullRed, fullBlue)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"red": itoa(red), "blue": itoa(blue)})
}

func (s *Server) scoringTable() orchestrator.ScoringTable {
	sc := s.services.Config.Scoring
	return orchestrator.ScoringTable{
		PlayerEject:            sc.PlayerEjectScore,
		PlayerDeath:            sc.PlayerDeathScore,
		AIEject:                sc.AIEjectScore,
		AIDeath:                sc.AIDeathScore,
		UnitDistanceMultiplier: sc.UnitDistanceMaxMultiplier,
		UnitBaseScore:          sc.UnitBaseScore,
	}
}

type missionEndRequest struct {
	Shot      map[string]map[string][2]float64 `json:"shot"`
	Time      float64                          `json:"time"`
	StartTime float64                          `json:"starttime"`
}

func (s *Server) handleMissionEnd(w http.ResponseWriter, r *http.Request) {
	var req missionEndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}

	shotGroups := make(map[string]map[string]stats.ShotEvent, len(req.Shot))
	for groupName, shooters := range req.Shot {
		byShooter := make(map[string]stats.ShotEvent, len(shooters))
		for shooterName, pair := range shooters {
			byShooter[shooterName] = stats.ShotEvent{WasPlane: pair[0] != 0, TimeS: pair[1]}
		}
		shotGroups[groupName] = byShooter
	}
	report := stats.MissionReport{
		ShotGroups:   shotGroups,
		StartTimeS:   req.StartTime,
		MissionTimeS: req.Time,
	}

	s.campaign.Lock()
	result, conflicts := orchestrator.MissionEnd(s.campaign, report)
	missionDuration := req.Time - req.StartTime
	if err := s.stats.SaveMission(r.Context(), conflicts, missionDuration); err != nil {
		s.services.Logger.Printf("missionend: save statistics: %v", err)
	}
	if err := s.services.Store.Save(s.campaign); err != nil {
		s.services.Logger.Printf("missionend: save snapshot: %v", err)
	}
	s.campaign.Unlock()

	if result.Event == "end" {
		s.services.Notifier.Post(result.Result)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"code": "0", "event": result.Event, "result": result.Result})
}
