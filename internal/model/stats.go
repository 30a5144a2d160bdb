package model

// DashboardStats is the derived dashboard snapshot. It is recomputed on
// demand and never persisted. Every field is always present; a failed
// counter defaults to zero instead of failing the snapshot.
type DashboardStats struct {
	TotalUsuarios       int `json:"total_usuarios"`
	UsuariosPendientes  int `json:"usuarios_pendientes"`
	TotalEmpresas       int `json:"total_empresas"`
	TotalCasos          int `json:"total_casos"`
	CasosActivos        int `json:"casos_activos"`
	TotalTareas         int `json:"total_tareas"`
	TareasPendientes    int `json:"tareas_pendientes"`
	MisTareasPendientes int `json:"mis_tareas_pendientes"`
}
