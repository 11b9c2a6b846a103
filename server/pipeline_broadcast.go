package server

//broadcastMatchList tells every connected session of every node that open matches changed
func (p *Pipeline) broadcastMatchList(game GameController, mode string) {
	if p.pubsub == nil {
		return
	}
	err := p.pubsub.Broadcast(&Envelope{
		Game: game.GetName(),
		Notification: &Notification{
			Kind: NOTIFICATION_MATCH_LIST_UPDATED,
			Mode: mode,
		},
	})
	if err != nil {
		p.logger.Warnw("Match list update could not be broadcast", "game", game.GetName(), "error", err)
	}
}
