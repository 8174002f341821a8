package server

// Server объединяет HTTP серверы отдельных областей: скоринг адресов,
// рыночные данные и отслеживаемые краулером токены.
type Server struct {
	ScoreServer
	MarketServer
	TrackerServer
}

func NewServer(
	scoreServer ScoreServer,
	marketServer MarketServer,
	trackerServer TrackerServer,
) Server {
	return Server{
		ScoreServer:   scoreServer,
		MarketServer:  marketServer,
		TrackerServer: trackerServer,
	}
}
