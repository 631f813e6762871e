package api

// Service accessors group Client methods by resource.
// Each service embeds *Client so call sites read c.Campaigns().Status(...).

type CampaignsService struct{ *Client }

type LeadsService struct{ *Client }

type EmailsService struct{ *Client }

type MonitoringService struct{ *Client }

type ThreadsService struct{ *Client }

func (c *Client) Campaigns() CampaignsService {
	return CampaignsService{c}
}

func (c *Client) Leads() LeadsService {
	return LeadsService{c}
}

func (c *Client) Emails() EmailsService {
	return EmailsService{c}
}

func (c *Client) Monitoring() MonitoringService {
	return MonitoringService{c}
}

func (c *Client) Threads() ThreadsService {
	return ThreadsService{c}
}
