package services

// ServiceManager bundles the service layer for handler wiring.
type ServiceManager interface {
	Session() SessionService
	Report() ReportService
}

type serviceManager struct {
	session SessionService
	report  ReportService
}

func NewServiceManager(session SessionService, report ReportService) ServiceManager {
	return &serviceManager{
		session: session,
		report:  report,
	}
}

func (m *serviceManager) Session() SessionService { return m.session }

func (m *serviceManager) Report() ReportService { return m.report }
