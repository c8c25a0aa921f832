package state

import "loopwise-go/internal/models"

func AddTeamMember(s *models.AppState, email, role string) models.TeamMember {
	m := models.TeamMember{
		Id:     NewId("tm"),
		Name:   "Invited Member",
		Email:  email,
		Role:   role,
		Status: "pending",
	}
	s.Team = append(s.Team, m)
	return m
}

func RemoveTeamMember(s *models.AppState, id string) (models.TeamMember, bool) {
	for i, m := range s.Team {
		if m.Id == id {
			s.Team = append(s.Team[:i:i], s.Team[i+1:]...)
			return m, true
		}
	}
	return models.TeamMember{}, false
}

func RevokeSession(s *models.AppState, id string) bool {
	for i, sess := range s.Sessions {
		if sess.Id == id {
			s.Sessions = append(s.Sessions[:i:i], s.Sessions[i+1:]...)
			return true
		}
	}
	return false
}
