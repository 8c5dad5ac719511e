package payroll

import "fmt"

// Organisation identifies the employer issuing the payroll. It supplies the
// single currency every computation runs in, and the registration numbers
// printed on statutory forms and payslips.
type Organisation struct {
	Name               string `yaml:"name"`
	Address            string `yaml:"address"`
	RegistrationNumber string `yaml:"registration_number"`
	TaxNumber          string `yaml:"tax_number"`
	EmployerNumber     string `yaml:"employer_number"`
	ManagerName        string `yaml:"manager_name"`
	ManagerRole        string `yaml:"manager_role"`
	Currency           string `yaml:"currency"`
}

func (o *Organisation) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("organisation name is required")
	}
	if len(o.Currency) != 3 {
		return fmt.Errorf("currency %q must be a three-letter ISO 4217 code", o.Currency)
	}
	return nil
}
